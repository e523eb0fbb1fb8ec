package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAlreadyExists     = errors.New("already_exists")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidState      = errors.New("invalid_state")
	ErrUnknownOption     = errors.New("unknown_option")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrMultipleOptions   = errors.New("multiple_options")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrForbidden         = errors.New("forbidden")
	ErrStorage           = errors.New("storage_error")
)

// MultipleOptionsError reports the option(s) a member already backs on the
// bet they tried to wager on again.
type MultipleOptionsError struct {
	Options []string
}

func (e *MultipleOptionsError) Error() string {
	return ErrMultipleOptions.Error() + ": already betting on " + strings.Join(e.Options, ", ")
}

func (e *MultipleOptionsError) Unwrap() error {
	return ErrMultipleOptions
}

// StateError is returned when a bet lifecycle transition is not legal from
// the bet's current status.
type StateError struct {
	BetID  string
	Status BetStatus
	Op     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: cannot %s bet %s in status %s", ErrInvalidState, e.Op, e.BetID, e.Status)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// StorageError wraps a persistence failure. The transaction it happened in
// has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

var domainErrors = []error{
	ErrAlreadyExists,
	ErrNotFound,
	ErrInvalidState,
	ErrUnknownOption,
	ErrInsufficientFunds,
	ErrMultipleOptions,
	ErrInvalidAmount,
	ErrInvalidRequest,
	ErrForbidden,
}

// Code returns the stable snake_case code of err, suitable for API payloads.
// Anything that is not a ledger error is reported as storage_error.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return ErrStorage.Error()
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return errors.Is(err, ErrStorage)
}
