package middleware

import (
	"net/http"

	"github.com/mcoot/eventgames/internal/api/apierr"
)

// AdminSecretHeader carries the admin secret on admin requests
const AdminSecretHeader = "X-Admin-Secret"

// Authenticator checks an admin secret
type Authenticator interface {
	Authenticate(secret string) error
}

// Admin creates middleware that only lets requests with a valid admin
// secret through
func Admin(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := r.Header.Get(AdminSecretHeader)
			if secret == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			if err := auth.Authenticate(secret); err != nil {
				apierr.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
