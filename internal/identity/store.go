package identity

import (
	"context"
	"time"
)

// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory, file-based, or external persistence without rewiring
// business code.
type AccountStore interface {
	Save(ctx context.Context, account Account) error
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
}

// RevocationStore tracks revoked token IDs until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
