package http

import (
	"context"
	"net/http"

	"github.com/mkrupp/homecase-tasks/internal/domain"
	context_ "github.com/mkrupp/homecase-tasks/internal/infra/context"
	"github.com/mkrupp/homecase-tasks/internal/infra/logging"
)

// Authenticator resolves the credentials carried by request headers to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, header http.Header) (domain.Identity, error)
}

// AuthenticatingMiddleware creates middleware that rejects every request the
// authenticator does not accept with 401, regardless of the reason.
// On success, the identity is added to the request context.
func AuthenticatingMiddleware(
	next http.Handler,
	authenticator Authenticator,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := authenticator.Authenticate(r.Context(), r.Header)
		if err != nil {
			log.DebugContext(r.Context(), "request rejected", "error", err)
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithIdentity(r.Context(), identity)))
	})
}
