package audit

import "context"

// Store is an append-only event sink with a bounded recent view for
// inspection. There is no update or delete: the trail is immutable.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
