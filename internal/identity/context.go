package identity

import (
	"context"

	"frontera/pkg/requestcontext"
)

// FromContext rebuilds the caller's identity from the request-scoped values
// set by the auth middleware. The role is not carried through the context;
// authorization runs on permissions alone.
func FromContext(ctx context.Context) User {
	return User{
		ID:          requestcontext.UserID(ctx),
		Name:        requestcontext.UserName(ctx),
		Permissions: requestcontext.Permissions(ctx),
	}
}
