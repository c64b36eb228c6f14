package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"inventory-recon/internal/config"
	"inventory-recon/internal/extract"
	matchhnd "inventory-recon/internal/match/handler"
	matchsvc "inventory-recon/internal/match/service"
	"inventory-recon/internal/middleware"
	stockhnd "inventory-recon/internal/stock/handler"
	stocksvc "inventory-recon/internal/stock/service"
	"inventory-recon/internal/store"
	"inventory-recon/server/http/handlers"
)

// Deps are the collaborators the routes need. Extractor may be nil when
// the vision service is not configured; /invoices/scan then answers 503.
type Deps struct {
	Products  store.ProductStore
	Engine    *stocksvc.Engine
	Extractor extract.Extractor
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	th := matchsvc.Thresholds{
		Discard: cfg.MatchDiscardThreshold,
		Accept:  cfg.MatchAcceptThreshold,
		Bonus:   cfg.MatchSubstringBonus,
	}

	r.Get("/health", handlers.Health)

	r.Get("/products", handlers.ListProducts(deps.Products, logger))
	r.Post("/products", handlers.CreateProduct(deps.Products, logger))

	r.Post("/invoices/scan", matchhnd.Scan(deps.Extractor, deps.Products, th, logger))
	r.Post("/match", matchhnd.Match(deps.Products, th, logger))
	r.Post("/match/export", matchhnd.Export(logger))

	r.Post("/jobs/{jobID}/validate", stockhnd.Validate(deps.Engine, logger))
	r.Post("/jobs/{jobID}/complete", stockhnd.Complete(deps.Engine, deps.Products, logger))

	return r
}
