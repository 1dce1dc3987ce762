package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lakshmeeshman/SIH-2025/internal/domain"
)

type authContextKey string

const contextKeyAccount authContextKey = "career-navigator-account"

type contextSetter interface {
	SetContext(context.Context)
}

// requireRole authenticates the bearer token, then checks role membership.
// Authentication failures answer 401 before any 403 is considered.
func (r *Router) requireRole(next http.HandlerFunc, allowed ...domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, account, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		if err := r.auth.RequireRole(account, allowed...); err != nil {
			r.logger.Warn("role check failed", "account_id", account.ID, "role", account.Role, "path", req.URL.Path)
			writeError(w, http.StatusForbidden, "access denied")
			return
		}
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// ensureAuth validates the Authorization header and enriches the context with
// the calling account.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request) (context.Context, *domain.Account, bool) {
	token, err := bearerToken(req.Header.Get("Authorization"))
	if err != nil {
		r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
		writeError(w, http.StatusUnauthorized, "authentication required")
		return req.Context(), nil, false
	}
	account, err := r.auth.Authorize(req.Context(), token)
	if err != nil {
		r.logger.Warn("token validation failed", "error", err, "path", req.URL.Path)
		writeError(w, http.StatusUnauthorized, "could not validate credentials")
		return req.Context(), nil, false
	}
	ctx := context.WithValue(req.Context(), contextKeyAccount, account)
	return ctx, account, true
}

// accountFromContext extracts the authenticated account from context.
func accountFromContext(ctx context.Context) (*domain.Account, bool) {
	account, ok := ctx.Value(contextKeyAccount).(*domain.Account)
	return account, ok && account != nil
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
