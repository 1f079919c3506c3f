package middleware

import (
	"context"
	"net/http"
	"strings"
)

type CtxKey int

const (
	CtxOwner CtxKey = iota
)

// OwnerHeader carries the connected wallet address, set by the wallet gateway.
const OwnerHeader = "X-Owner-Address"

func Owner() Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
			if owner == "" {
				h.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxOwner, strings.ToLower(owner))
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFrom returns the wallet address of the request, if any.
func OwnerFrom(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(CtxOwner).(string)
	return owner, ok && owner != ""
}
