package router

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
)

// Authenticator checks HTTP Basic credentials. On success it returns a
// context carrying whatever the application needs downstream.
type Authenticator func(ctx context.Context, username, password string) (context.Context, error)

var errMissingCredentials = goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)

// BasicAuth returns a middleware that rejects requests without valid Basic
// credentials. Errors from authn are written through the standard error
// envelope, so a 401 always carries a WWW-Authenticate challenge.
func (r *Router) BasicAuth(authn Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			username, password, ok := req.BasicAuth()
			if !ok {
				r.writeError(req.Context(), w, errMissingCredentials)
				return
			}

			ctx, err := authn(req.Context(), username, password)
			if err != nil {
				r.writeError(req.Context(), w, err)
				return
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
