package session

import "context"

// Store keeps session state. Update must apply fn atomically with respect to
// other updates of the same session; when fn returns an error nothing is written.
type Store interface {
	Create(ctx context.Context, st State) error
	Get(ctx context.Context, id string) (State, error)
	Update(ctx context.Context, id string, fn func(*State) error) (State, error)
}
