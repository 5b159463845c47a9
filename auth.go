package main

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func checkAuth(r *http.Request, token string) bool {
	if token == "" {
		return true // No auth configured
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if tokenMatches(strings.TrimPrefix(auth, "Bearer "), token) {
			return true
		}
	}

	// Webviews opening a WebSocket can't set headers.
	return tokenMatches(r.URL.Query().Get("token"), token)
}

func requireToken(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !checkAuth(r, token) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
