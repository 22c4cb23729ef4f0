package application

import (
	"context"
	"testing"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/saga"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// stepRecorder collects remote calls across all step clients in invocation order.
type stepRecorder struct {
	calls []string
}

func (r *stepRecorder) count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

type stubInventory struct {
	rec        *stepRecorder
	reserveErr error
	releaseErr error
}

func (s *stubInventory) Reserve(ctx context.Context, productID string) error {
	s.rec.calls = append(s.rec.calls, "reserve")
	return s.reserveErr
}

func (s *stubInventory) Release(ctx context.Context, productID string) error {
	s.rec.calls = append(s.rec.calls, "release")
	return s.releaseErr
}

type stubPayments struct {
	rec       *stepRecorder
	chargeErr error
	refundErr error
}

func (s *stubPayments) Charge(ctx context.Context, userID string) error {
	s.rec.calls = append(s.rec.calls, "charge")
	return s.chargeErr
}

func (s *stubPayments) Refund(ctx context.Context, userID string) error {
	s.rec.calls = append(s.rec.calls, "refund")
	return s.refundErr
}

type stubShipping struct {
	rec     *stepRecorder
	shipErr error
}

func (s *stubShipping) Ship(ctx context.Context, userID, productID string) error {
	s.rec.calls = append(s.rec.calls, "ship")
	return s.shipErr
}

type stubOrderRepository struct {
	saved        []*domain.Order
	byKey        map[string]*domain.Order
	saveErr      error
	updateErr    error
	statusWrites []domain.OrderStatus
}

func (s *stubOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, order)
	return nil
}

func (s *stubOrderRepository) UpdateStatus(ctx context.Context, id models.ID, status domain.OrderStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.statusWrites = append(s.statusWrites, status)
	return nil
}

func (s *stubOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	for _, o := range s.saved {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (s *stubOrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return s.byKey[key], nil
}

type capturingPublisher struct {
	published []*events.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	p.published = append(p.published, evts...)
	return nil
}

func (p *capturingPublisher) types() []string {
	out := make([]string, len(p.published))
	for i, e := range p.published {
		out[i] = e.EventType
	}
	return out
}

type fixture struct {
	rec       *stepRecorder
	repo      *stubOrderRepository
	inventory *stubInventory
	payments  *stubPayments
	shipping  *stubShipping
	publisher *capturingPublisher
	useCase   *PlaceOrder
}

func newFixture() *fixture {
	rec := &stepRecorder{}
	f := &fixture{
		rec:       rec,
		repo:      &stubOrderRepository{byKey: map[string]*domain.Order{}},
		inventory: &stubInventory{rec: rec},
		payments:  &stubPayments{rec: rec},
		shipping:  &stubShipping{rec: rec},
		publisher: &capturingPublisher{},
	}
	f.useCase = NewPlaceOrder(f.repo, f.inventory, f.payments, f.shipping, nil, f.publisher, saga.NewExecutor())
	return f
}

func command() *PlaceOrderCommand {
	return &PlaceOrderCommand{UserID: "user123", ProductID: "item123"}
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	f := newFixture()

	resp, err := f.useCase.Execute(context.Background(), command())
	assert.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCompleted, resp.Status)
	assert.True(t, resp.Completed())
	assert.NotEmpty(t, resp.OrderID)

	// Each forward action exactly once, no compensation.
	assert.Equal(t, []string{"reserve", "charge", "ship"}, f.rec.calls)
	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusCompleted}, f.repo.statusWrites)
	assert.Equal(t, []string{events.OrderInitiatedEvent, events.OrderCompletedEvent}, f.publisher.types())
}

func TestPlaceOrder_FirstStepFailure(t *testing.T) {
	f := newFixture()
	f.inventory.reserveErr = domain.ErrOutOfStock

	resp, err := f.useCase.Execute(context.Background(), command())
	assert.NoError(t, err)

	assert.Equal(t, domain.OrderStatusFailed, resp.Status)

	// Nothing committed, so nothing is compensated and no later step runs.
	assert.Equal(t, []string{"reserve"}, f.rec.calls)
	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusFailed}, f.repo.statusWrites)
}

func TestPlaceOrder_MidSagaFailure(t *testing.T) {
	f := newFixture()
	f.payments.chargeErr = domain.ErrInsufficientFunds

	resp, err := f.useCase.Execute(context.Background(), command())
	assert.NoError(t, err)

	assert.Equal(t, domain.OrderStatusFailed, resp.Status)

	// Only the committed reserve is compensated; the failed charge is not
	// refunded and shipping never runs.
	assert.Equal(t, []string{"reserve", "charge", "release"}, f.rec.calls)
	assert.Equal(t, 1, f.rec.count("release"))
	assert.Equal(t, 0, f.rec.count("refund"))
	assert.Equal(t, 0, f.rec.count("ship"))
}

func TestPlaceOrder_LateFailureCompensatesInReverseOrder(t *testing.T) {
	f := newFixture()
	f.shipping.shipErr = errors.New("shipping unavailable")

	resp, err := f.useCase.Execute(context.Background(), command())
	assert.NoError(t, err)

	assert.Equal(t, domain.OrderStatusFailed, resp.Status)
	assert.Equal(t, []string{"reserve", "charge", "ship", "refund", "release"}, f.rec.calls)
}

func TestPlaceOrder_CompensationFailureDoesNotMaskSagaFailure(t *testing.T) {
	f := newFixture()
	f.payments.chargeErr = domain.ErrInsufficientFunds
	f.inventory.releaseErr = errors.New("inventory unavailable")

	resp, err := f.useCase.Execute(context.Background(), command())
	assert.NoError(t, err)

	assert.Equal(t, domain.OrderStatusFailed, resp.Status)
	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusFailed}, f.repo.statusWrites)

	// The failed compensation is visible in the audit events.
	var compensations []domain.OrderCompensationAttemptedData
	for _, e := range f.publisher.published {
		if e.EventType == events.OrderCompensationAttemptedEvent {
			compensations = append(compensations, e.Data.(domain.OrderCompensationAttemptedData))
		}
	}
	assert.Len(t, compensations, 1)
	assert.Equal(t, domain.StepReserveInventory, compensations[0].Step)
	assert.False(t, compensations[0].Success)
}

func TestPlaceOrder_LedgerWriteAheadFailureAbortsBeforeRemoteCalls(t *testing.T) {
	f := newFixture()
	f.repo.saveErr = errors.New("database down")

	resp, err := f.useCase.Execute(context.Background(), command())
	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "failed to create order")

	// No remote call was issued, so there is nothing to compensate.
	assert.Empty(t, f.rec.calls)
	assert.Empty(t, f.repo.statusWrites)
}

func TestPlaceOrder_TerminalWriteFailureIsReported(t *testing.T) {
	f := newFixture()
	f.repo.updateErr = errors.New("database down")

	resp, err := f.useCase.Execute(context.Background(), command())
	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "failed to write terminal order status")

	// The saga itself ran to completion; downstream effects stand.
	assert.Equal(t, []string{"reserve", "charge", "ship"}, f.rec.calls)
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name    string
		command *PlaceOrderCommand
		message string
	}{
		{
			name:    "missing user ID",
			command: &PlaceOrderCommand{ProductID: "item123"},
			message: "user ID is required",
		},
		{
			name:    "missing product ID",
			command: &PlaceOrderCommand{UserID: "user123"},
			message: "product ID is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.useCase.Execute(context.Background(), tt.command)
			assert.Nil(t, resp)
			assert.Equal(t, ErrValidation, errors.Cause(err))
			assert.Contains(t, err.Error(), tt.message)

			// Rejected before the ledger write or any remote call.
			assert.Empty(t, f.rec.calls)
			assert.Empty(t, f.repo.saved)
		})
	}
}

func TestPlaceOrder_IdempotencyKeyShortCircuitsReplay(t *testing.T) {
	f := newFixture()

	cmd := command()
	cmd.IdempotencyKey = "retry-abc"

	first, err := f.useCase.Execute(context.Background(), cmd)
	assert.NoError(t, err)
	f.repo.byKey[cmd.IdempotencyKey] = f.repo.saved[0]

	second, err := f.useCase.Execute(context.Background(), cmd)
	assert.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, second.Replayed)

	// The replay caused no second round of remote calls.
	assert.Equal(t, []string{"reserve", "charge", "ship"}, f.rec.calls)
	assert.Len(t, f.repo.saved, 1)
}
