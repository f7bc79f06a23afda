package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/voicerelay/internal/api/handlers"
	"github.com/nikhilbhutani/voicerelay/internal/api/middleware"
	"github.com/nikhilbhutani/voicerelay/internal/assistant"
	"github.com/nikhilbhutani/voicerelay/internal/config"
	"github.com/nikhilbhutani/voicerelay/internal/llm"
)

type Router struct {
	mux       *chi.Mux
	cfg       *config.Config
	provider  llm.Provider
	assistant *assistant.Assistant
	static    fs.FS
	limiter   *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, provider llm.Provider, static fs.FS) *Router {
	rt := &Router{
		mux:       chi.NewRouter(),
		cfg:       cfg,
		provider:  provider,
		assistant: assistant.New(provider, cfg.LLM.Model),
		static:    static,
	}
	if cfg.HTTP.RateLimitRPS > 0 {
		rt.limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	}
	return rt
}

// RateLimiter returns the limiter applied to the relay routes, nil when
// rate limiting is disabled.
func (rt *Router) RateLimiter() *middleware.RateLimiter {
	return rt.limiter
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(rt.cfg.HTTP.AllowedOrigins))

	// Health endpoints
	health := handlers.NewHealthHandler(rt.provider)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Browser client
	if rt.static != nil {
		static := handlers.NewStaticHandler(rt.static)
		r.Get("/", static.Index)
		r.Get("/static/*", static.Assets)
	}

	// Relay
	relay := handlers.NewRelayHandler(rt.assistant)
	r.Group(func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(rt.limiter.Limit)
		}
		r.Post("/speech-to-text", relay.SpeechToText)
		r.Post("/process-message", relay.ProcessMessage)
	})

	return r
}
