package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukanapp/dukan/internal/auth"
	"github.com/dukanapp/dukan/internal/intake"
)

type operatorContextKey struct{}

// RequireOperator authenticates review-API requests with a bearer token
// and stores the operator's claims in the request context.
func (h *Handlers) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			h.loggerFromContext(r.Context()).Warn("rejected operator token", "error", err)
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), operatorContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func operatorFromContext(ctx context.Context) *auth.OperatorClaims {
	claims, _ := ctx.Value(operatorContextKey{}).(*auth.OperatorClaims)
	return claims
}

// operatorScope returns the caller's department scope. Requests that
// somehow reach a protected handler without claims get an empty scope,
// which resolves every product as not permitted.
func operatorScope(ctx context.Context) intake.AccessScope {
	if claims := operatorFromContext(ctx); claims != nil {
		return claims.Scope()
	}
	return intake.AccessScope{}
}
