package auth

import (
	"net/http"
	"strings"
)

// TokenHeader is the response header carrying a newly issued or rotated
// token. Requests may present the token in the same header or as a bearer
// credential in Authorization.
const TokenHeader = "X-Auth-Token"

// TokenFromRequest extracts the auth token from a request. It accepts
// "Authorization: Bearer <token>" as well as the bare X-Auth-Token header,
// and returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(h)
	}
	return strings.TrimSpace(r.Header.Get(TokenHeader))
}

// RequireToken returns middleware that resolves the request token to a user
// via the guard and stores the user in the request context. Requests without
// a resolvable token are rejected with 401 before the handler runs.
func RequireToken(g *Guard) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.ResolveCaller(r.Context(), TokenFromRequest(r))
			if err != nil {
				WriteError(w, r, err)
				return
			}
			ctx := NewContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
