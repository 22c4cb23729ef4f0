package domain

import (
	"testing"

	"github.com/draftea/order-system/shared/events"
	"github.com/stretchr/testify/assert"
)

func TestCreateOrder(t *testing.T) {
	order, err := CreateOrder("user123", "item123", "")
	assert.NoError(t, err)

	assert.Equal(t, OrderStatusInitiated, order.Status)
	assert.Equal(t, "user123", order.UserID)
	assert.Equal(t, "item123", order.ProductID)
	assert.NotEmpty(t, order.ID)

	evts := order.Events()
	assert.Len(t, evts, 1)
	assert.Equal(t, events.OrderInitiatedEvent, evts[0].EventType)
}

func TestCreateOrder_Validation(t *testing.T) {
	_, err := CreateOrder("", "item123", "")
	assert.EqualError(t, err, "user ID is required")

	_, err = CreateOrder("user123", "", "")
	assert.EqualError(t, err, "product ID is required")
}

func TestOrder_StatusTransitionsAreMonotonic(t *testing.T) {
	t.Run("complete then fail is rejected", func(t *testing.T) {
		order, _ := CreateOrder("user123", "item123", "")
		assert.NoError(t, order.Complete())
		assert.Equal(t, OrderStatusCompleted, order.Status)

		assert.Error(t, order.Fail("late failure"))
		assert.Equal(t, OrderStatusCompleted, order.Status)
	})

	t.Run("fail then complete is rejected", func(t *testing.T) {
		order, _ := CreateOrder("user123", "item123", "")
		assert.NoError(t, order.Fail("out of stock"))
		assert.Equal(t, OrderStatusFailed, order.Status)

		assert.Error(t, order.Complete())
		assert.Equal(t, OrderStatusFailed, order.Status)
	})

	t.Run("terminal states are immutable", func(t *testing.T) {
		order, _ := CreateOrder("user123", "item123", "")
		assert.NoError(t, order.Complete())
		assert.Error(t, order.Complete())
	})
}

func TestOrder_LifecycleEvents(t *testing.T) {
	order, _ := CreateOrder("user123", "item123", "")
	order.ClearEvents()

	assert.NoError(t, order.Fail("insufficient funds"))
	order.RecordCompensation(StepReserveInventory, nil)

	evts := order.Events()
	assert.Len(t, evts, 2)
	assert.Equal(t, events.OrderFailedEvent, evts[0].EventType)
	assert.Equal(t, events.OrderCompensationAttemptedEvent, evts[1].EventType)

	// Compensation attempts never touch the terminal status.
	assert.Equal(t, OrderStatusFailed, order.Status)
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusInitiated.IsTerminal())
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusFailed.IsTerminal())
}
