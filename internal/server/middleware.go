package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyRoom
	ctxKeyPlayer
)

// optionalUser attaches the signed-in user when the request carries a
// valid session token. Anonymous requests and unknown tokens pass through;
// a failing store does not.
func optionalUser(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, err := store.UserFromSession(r.Context(), token)
			if errors.Is(err, errNoSession) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFrom(r); !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// roomMiddleware resolves {code} to a room.
func roomMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := strings.ToUpper(chi.URLParam(r, "code"))
			room, err := store.RoomByCode(r.Context(), code)
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "room not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyRoom, room)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requirePlayer authenticates a room member by session token. It must run
// after roomMiddleware.
func requirePlayer(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}
			p, err := store.PlayerFromToken(r.Context(), roomFrom(r).ID, token)
			if errors.Is(err, errNoSession) {
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPlayer, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !playerFrom(r).IsHost {
			writeError(w, http.StatusForbidden, "only the host can do that")
			return
		}
		next.ServeHTTP(w, r)
	})
}
