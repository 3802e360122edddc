package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/privchat/privchat-backend/internal/handlers"
)

// Route is one row of the static registration table: no reflection, no
// decorators, the full HTTP surface readable in one place.
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	Protected bool
}

// Table builds the registration table for the whole API.
func Table(users *handlers.UserHandlers, messages *handlers.MessageHandlers, gateway *handlers.ChatGateway) []Route {
	return []Route{
		{http.MethodPost, "/users/register", users.Register, false},
		{http.MethodPost, "/users/login", users.Login, false},
		{http.MethodGet, "/users", users.GetUser, true},
		{http.MethodPost, "/users/addContact", users.AddContact, true},
		{http.MethodGet, "/messages", messages.GetMessages, true},
		{http.MethodGet, "/ws", gateway.ServeWS, false},
	}
}

// Register mounts the table on the router, wrapping protected rows with the
// auth middleware.
func Register(r chi.Router, table []Route, auth func(http.Handler) http.Handler) {
	for _, rt := range table {
		if rt.Protected {
			r.With(auth).Method(rt.Method, rt.Pattern, rt.Handler)
		} else {
			r.Method(rt.Method, rt.Pattern, rt.Handler)
		}
	}
}
