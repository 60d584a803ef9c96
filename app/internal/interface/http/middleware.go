package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domuser "example.com/mystic-prints/app/internal/domain/user"
	cartuc "example.com/mystic-prints/app/internal/usecase/cart"
)

type ctxKey int

const (
	ctxUserKey ctxKey = iota
	ctxCartKey
)

var (
	errUnauthenticated = errors.New("unauthenticated")
	errForbidden       = errors.New("forbidden")
)

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			a.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), true
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		identity, err := a.authSvc.Authenticate(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth attaches the identity when a valid token is sent and lets
// guests through otherwise.
func (a *API) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		identity, err := a.authSvc.Authenticate(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cartSession opens the cart of the X-Cart-Session key, creating a key when
// the client has none, and echoes the key back.
func (a *API) cartSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(SessionHeader))
		if key == "" {
			key = uuid.NewString()
		}
		w.Header().Set(SessionHeader, key)

		store, err := a.sessions.Open(r.Context(), key, getIdentity(r.Context()))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxCartKey, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) requireRoles(roles ...domuser.RoleCode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getIdentity(r.Context())
			if user == nil {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			for _, role := range roles {
				if user.RoleCode == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, errForbidden)
		})
	}
}

func getIdentity(ctx context.Context) *domuser.Identity {
	if user, ok := ctx.Value(ctxUserKey).(*domuser.Identity); ok {
		return user
	}
	return nil
}

func getCart(ctx context.Context) *cartuc.Store {
	if store, ok := ctx.Value(ctxCartKey).(*cartuc.Store); ok {
		return store
	}
	return nil
}
