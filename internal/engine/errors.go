package engine

import (
	"errors"
	"fmt"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

var (
	// ErrNotFound is shared with the storage layer so a row that vanished
	// under an update matches too.
	ErrNotFound              = storage.ErrNotFound
	ErrInsufficientFunds     = errors.New("not enough petals")
	ErrInsufficientCharge    = errors.New("charge too low to bloom")
	ErrInvalidInput          = errors.New("invalid input")
	ErrBloomAlreadyCompleted = errors.New("bloom already completed")
	ErrNoStoryCards          = errors.New("no story cards available")
	ErrUnsupported           = errors.New("not supported by this store")
)

// NotFoundError reports a missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FundsError is returned when a purchase costs more than the balance.
type FundsError struct {
	Balance int
	Price   int
}

func (e FundsError) Error() string {
	return fmt.Sprintf("not enough petals: have %d, need %d", e.Balance, e.Price)
}

func (e FundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// ChargeError indicates the companion has not reached the bloom threshold.
type ChargeError struct {
	Charge   int
	Required int
}

func (e ChargeError) Error() string {
	return fmt.Sprintf("charge too low to bloom: %d/%d", e.Charge, e.Required)
}

func (e ChargeError) Is(target error) bool { return target == ErrInsufficientCharge }

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool { return target == ErrInvalidInput }
