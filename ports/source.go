package ports

import (
	"context"

	"macropipe/domain/indicator"
)

// ObservationSource fetches one indicator's observations from a remote
// statistics API. Implementations must drop null values before returning.
type ObservationSource interface {
	Fetch(ctx context.Context, meta indicator.Meta) ([]indicator.Observation, error)
}
