package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	conversationHandler "github.com/sarveshz/munim/backend/internal/handler/conversation"
	"github.com/sarveshz/munim/backend/internal/handler/records"
	middlewarePkg "github.com/sarveshz/munim/backend/internal/middleware"
	conversationService "github.com/sarveshz/munim/backend/internal/service/conversation"
	"github.com/sarveshz/munim/backend/internal/storage"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(convSvc *conversationService.Service, gateway storage.Gateway) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	convHandler := conversationHandler.New(convSvc)
	wsHandler := conversationHandler.NewWebSocketHandler(convSvc)
	recordsHandler := records.New(gateway)

	r.Route("/api", func(api chi.Router) {
		convHandler.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)
		recordsHandler.RegisterRoutes(api)
	})

	return r
}
