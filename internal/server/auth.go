package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/playperu/pelicansoup/internal/soup"
)

var errNoSession = errors.New("no valid session")

// bearerToken returns the Authorization bearer token. Streaming endpoints
// cannot set headers from a browser, so a token query parameter is
// accepted as well.
func bearerToken(r *http.Request) string {
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found && token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

func userFrom(r *http.Request) (soup.User, bool) {
	u, ok := r.Context().Value(ctxKeyUser).(soup.User)
	return u, ok
}

func roomFrom(r *http.Request) soup.Room {
	return r.Context().Value(ctxKeyRoom).(soup.Room)
}

func playerFrom(r *http.Request) soup.Player {
	return r.Context().Value(ctxKeyPlayer).(soup.Player)
}
