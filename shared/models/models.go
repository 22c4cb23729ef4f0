package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ID is the identifier type shared by all aggregates and events
type ID string

// GenerateUUID creates a fresh random ID
func GenerateUUID() ID {
	return ID(uuid.New().String())
}

// NewID parses id and rejects anything that is not a valid UUID
func NewID(id string) (ID, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", err
	}
	return ID(id), nil
}

func (id ID) String() string {
	return string(id)
}

// Timestamps tracks when an entity was created and last touched
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewTimestamps() Timestamps {
	now := time.Now()
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Update refreshes UpdatedAt, returning the new value
func (t Timestamps) Update() Timestamps {
	t.UpdatedAt = time.Now()
	return t
}

// Version is an optimistic-locking counter, starting at 1
type Version struct {
	Value int
}

func NewVersion() Version {
	return Version{Value: 1}
}

// Update increments the version, returning the new value
func (v Version) Update() Version {
	v.Value++
	return v
}

// Money is an amount in minor units with its ISO currency code.
// Arithmetic refuses to mix currencies.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Add returns m + other, erroring on a currency mismatch
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.New("currency mismatch")
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Subtract returns m - other, erroring on a currency mismatch
func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, errors.New("currency mismatch")
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}
