/*
Package handler provides the HTTP status API of the chat server.

The API is read-only: a health probe, the list of online users, and the replay
history a newly joined user would receive. It is served on its own port, separate
from the line protocol listener.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"linechat/internal/pkg/errs"
	"linechat/internal/pkg/logx"
	"linechat/internal/pkg/resp"
)

// Router sets up the status API routing table with CORS, request IDs, request logging,
// panic recovery and, when deps.Limiter is set, per-IP rate limiting.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	if deps.Limiter != nil {
		r.Use(deps.Limiter.Middleware)
	}

	r.Get("/health", HandleHealth(deps))

	r.Route("/api", func(api chi.Router) {
		api.Get("/users", HandleOnlineUsers(deps))
		api.Get("/history", HandleHistory(deps))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		resp.RespondJSON(w, r, http.StatusNotFound, resp.JSONResponse{
			Code:    errs.ErrInvalidParams,
			Message: "Not found.",
		})
	})

	return r
}
