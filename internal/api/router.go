package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/callshield/backend/internal/alert"
	"github.com/callshield/backend/internal/analysis"
	"github.com/callshield/backend/internal/api/handlers"
	"github.com/callshield/backend/internal/api/middleware"
	"github.com/callshield/backend/internal/cache"
	"github.com/callshield/backend/internal/config"
	"github.com/callshield/backend/internal/fraud"
	"github.com/callshield/backend/internal/llm"
	"github.com/callshield/backend/internal/queue"
	"github.com/callshield/backend/internal/records"
	"github.com/callshield/backend/internal/stt"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	llmGW llm.Gateway
	queue *queue.Client
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, qc *queue.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		llmGW: llm.NewGateway(cfg.LLM),
		queue: qc,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.CORS.AllowedOrigins))

	rl := middleware.NewRateLimiter(10, 20)
	r.Use(rl.Limit)

	// Probes (outside the /api prefix, for orchestration)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	var historyCache *cache.Cache
	if rt.redis != nil {
		historyCache = cache.NewCache(rt.redis)
	}
	recordSvc := records.NewService(rt.db, historyCache, rt.cfg.History.CacheTTL)
	alertSvc := alert.NewService(rt.db, rt.queue)
	classifier := fraud.NewClassifier(rt.llmGW, rt.cfg.LLM.DefaultModel)
	transcriber := stt.NewOpenAISTT(rt.cfg.STT)
	analysisSvc := analysis.NewService(transcriber, classifier, recordSvc, alertSvc)

	callsH := handlers.NewCallsHandler(analysisSvc, recordSvc, rt.cfg.Upload.MaxBytes)
	alertsH := handlers.NewAlertsHandler(alertSvc)

	// API surface consumed by the mobile client
	r.Route("/api", func(r chi.Router) {
		r.Get("/", health.Root)
		r.Get("/health", health.Health)

		r.Post("/analyze-call", callsH.AnalyzeCall)
		r.Get("/call-history", callsH.CallHistory)

		r.Route("/alerts/webhooks", func(r chi.Router) {
			r.Post("/", alertsH.Create)
			r.Get("/", alertsH.List)
			r.Delete("/{id}", alertsH.Delete)
		})
	})

	return r
}
