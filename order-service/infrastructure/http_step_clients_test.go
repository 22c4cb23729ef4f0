package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStepClients_Reserve(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	clients := NewHTTPStepClients(server.URL, server.URL, server.URL)

	err := clients.Reserve(context.Background(), "item123")
	assert.NoError(t, err)
	assert.Equal(t, "/reserve", gotPath)
	assert.Equal(t, map[string]string{"productId": "item123"}, gotBody)
}

func TestHTTPStepClients_Reserve_OutOfStock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Out of stock", http.StatusBadRequest)
	}))
	defer server.Close()

	clients := NewHTTPStepClients(server.URL, server.URL, server.URL)

	err := clients.Reserve(context.Background(), "item123")
	assert.Equal(t, domain.ErrOutOfStock, errors.Cause(err))
}

func TestHTTPStepClients_Charge_InsufficientFunds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Insufficient funds", http.StatusBadRequest)
	}))
	defer server.Close()

	clients := NewHTTPStepClients(server.URL, server.URL, server.URL)

	err := clients.Charge(context.Background(), "user123")
	assert.Equal(t, domain.ErrInsufficientFunds, errors.Cause(err))
}

func TestHTTPStepClients_Release_BadRequestIsNotARejection(t *testing.T) {
	// Release has no business rejection; a 400 is an operational failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "malformed", http.StatusBadRequest)
	}))
	defer server.Close()

	clients := NewHTTPStepClients(server.URL, server.URL, server.URL)

	err := clients.Release(context.Background(), "item123")
	assert.Error(t, err)
	assert.NotEqual(t, domain.ErrOutOfStock, errors.Cause(err))
	assert.Contains(t, err.Error(), "status 400")
}

func TestHTTPStepClients_Ship_SendsBothIDs(t *testing.T) {
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	clients := NewHTTPStepClients(server.URL, server.URL, server.URL)

	err := clients.Ship(context.Background(), "user123", "item123")
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"userId": "user123", "productId": "item123"}, gotBody)
}

func TestHTTPStepClients_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	clients := NewHTTPStepClients(server.URL, server.URL, server.URL)

	err := clients.Charge(context.Background(), "user123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPStepClients_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	clients := NewHTTPStepClients(server.URL, server.URL, server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := clients.Reserve(ctx, "item123")
	assert.Error(t, err)
}
