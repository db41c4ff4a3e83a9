package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// sessionHeader carries the shopper's session identifier. The cart is scoped
// to it; a client keeps its cart by echoing the header back on every request.
const sessionHeader = "X-Session-ID"

// session extracts the session ID from the request, generating a fresh one
// when absent, and always reflects it on the response so clients can pick
// it up.
func session(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(sessionHeader)
	if id == "" || len(id) > 128 {
		id = uuid.New().String()
	}
	w.Header().Set(sessionHeader, id)
	return id
}
