package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "renthub/pkg/errors"
	"renthub/pkg/model"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

const identityKey contextKey = "identity"

// Identity is the authenticated caller as attached by the upstream
// gateway. This service trusts the headers as given; token verification
// happens before requests reach it.
type Identity struct {
	UserID string
	Role   string
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

func WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := model.NormalizeID(r.Header.Get(HeaderUserID))
		role := strings.TrimSpace(strings.ToLower(r.Header.Get(HeaderUserRole)))
		if role == "" {
			role = RoleUser
		}

		if userID != "" {
			ctx := context.WithValue(r.Context(), identityKey, Identity{
				UserID: userID,
				Role:   role,
			})
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireIdentity returns the caller identity or an UNAUTHORIZED error
// when the gateway attached none.
func RequireIdentity(r *http.Request) (Identity, error) {
	id, ok := IdentityFromContext(r.Context())
	if !ok || !model.IsValidID(id.UserID) {
		return Identity{}, apperrors.Unauthorized("missing or malformed caller identity")
	}
	return id, nil
}
