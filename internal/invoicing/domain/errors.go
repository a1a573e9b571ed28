package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValidOrders is returned by bulk assembly when no orders
	// survive the exclusion filter. "No orders in range" and "everything
	// excluded" collapse to this one kind.
	ErrNoValidOrders = errors.New("no_valid_orders")

	// ErrNoOrdersFound is returned by single-invoice assembly when none
	// of the requested order ids are present in the fetched set.
	ErrNoOrdersFound = errors.New("no_orders_found")

	// ErrContractorNotFound is returned when a caller-supplied
	// contractor id has no billing profile.
	ErrContractorNotFound = errors.New("contractor_not_found")

	// ErrUnknownProvider is returned by the adapter registry for a
	// provider name nothing was registered under.
	ErrUnknownProvider = errors.New("unknown_provider")
)

// ProviderRejectedError is a business-rule rejection by the accounting
// provider. Not retryable; the provider's message is surfaced.
type ProviderRejectedError struct {
	Provider string
	Message  string
}

func (e *ProviderRejectedError) Error() string {
	return fmt.Sprintf("%s rejected invoice: %s", e.Provider, e.Message)
}

// ProviderUnavailableError is a transient network or 5xx failure. The
// whole submission may be retried.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// PollTimeoutError means the provider was still processing when the
// poll schedule ran out. The outcome is ambiguous: the task reference
// is retained so the result can be checked again later.
type PollTimeoutError struct {
	Provider      string
	TaskReference string
	Attempts      int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("%s still processing task %s after %d polls", e.Provider, e.TaskReference, e.Attempts)
}

// ClientUpsertError means the pre-submission contractor sync with the
// provider failed. No invoice is attempted without a confirmed client
// record, so this blocks the whole submission.
type ClientUpsertError struct {
	Provider string
	Err      error
}

func (e *ClientUpsertError) Error() string {
	return fmt.Sprintf("%s client upsert failed: %v", e.Provider, e.Err)
}

func (e *ClientUpsertError) Unwrap() error { return e.Err }
