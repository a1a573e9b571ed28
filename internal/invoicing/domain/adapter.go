package domain

import "context"

// ProviderAdapter submits a provider-neutral invoice to one accounting
// integration. Submit returns the provider's identifier for the created
// invoice, or one of: *ProviderRejectedError, *ProviderUnavailableError,
// *PollTimeoutError, *ClientUpsertError.
type ProviderAdapter interface {
	Name() string
	Submit(ctx context.Context, invoice *Invoice) (string, error)
}
