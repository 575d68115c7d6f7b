// Package kernel assembles the HTTP handler: global middleware, the REST
// routes, and the auxiliary endpoints (/metrics, /healthz, /graphql,
// /ws/alerts, /storage).
package kernel

import (
	"net/http"

	"github.com/shashiranjanraj/myshop/app/graph"
	"github.com/shashiranjanraj/myshop/app/models"
	"github.com/shashiranjanraj/myshop/app/routes"
	"github.com/shashiranjanraj/myshop/app/services"
	"github.com/shashiranjanraj/myshop/pkg/alerts"
	"github.com/shashiranjanraj/myshop/pkg/database"
	"github.com/shashiranjanraj/myshop/pkg/event"
	"github.com/shashiranjanraj/myshop/pkg/logger"
	"github.com/shashiranjanraj/myshop/pkg/metrics"
	"github.com/shashiranjanraj/myshop/pkg/middleware"
	"github.com/shashiranjanraj/myshop/pkg/reqid"
	"github.com/shashiranjanraj/myshop/pkg/response"
	"github.com/shashiranjanraj/myshop/pkg/router"
	"github.com/shashiranjanraj/myshop/pkg/storage"
)

// NewHandler builds the full HTTP surface. It also registers the event
// listeners that run alongside it (profile auto-creation, low-stock
// alerting).
func NewHandler() (http.Handler, error) {
	registerListeners()

	hub := alerts.NewHub()
	hub.Subscribe(services.EventProductLowStock)
	go hub.Run()

	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics — outermost for accurate total latency
	//  2. Request ID        — inject unique ID before anything logs
	//  3. Recovery          — catches panics, logs them with the request ID
	//  4. Logger            — logs request_id from context
	//  5. CORS              — set CORS headers
	//  6. Global limiter    — per-IP flood protection ahead of the scoped throttles
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.GlobalLimit(50, 100))

	routes.RegisterAPI(r)

	// Prometheus scrape endpoint — no auth, no throttle.
	r.HandleFunc("/metrics", metrics.Handler())

	r.Get("/healthz", "healthz", healthz)

	schema, err := graph.NewSchema(services.NewProductService())
	if err != nil {
		return nil, err
	}
	r.Post("/graphql", "graphql", graph.Handler(schema), middleware.OptionalAuth)

	r.Get("/ws/alerts", "alerts", hub.Handler, middleware.Auth)

	// Locally stored product images are served straight off disk.
	files := http.StripPrefix("/storage/", http.FileServer(http.Dir(storage.LocalRoot())))
	r.HandleFunc("/storage/*", files.ServeHTTP)

	return r.Handler(), nil
}

// healthz reports liveness plus a database ping.
func healthz(w http.ResponseWriter, r *http.Request) {
	db, err := database.DB.DB()
	if err != nil || db.PingContext(r.Context()) != nil {
		response.Error(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}

// registerListeners wires the event bus consumers.
func registerListeners() {
	// Every new user gets an empty profile row.
	event.On(services.EventUserRegistered, func(user models.User) {
		profile := models.UserProfile{UserID: user.ID}
		if err := database.DB.Create(&profile).Error; err != nil {
			logger.Error("kernel: profile auto-create failed", "user_id", user.ID, "error", err)
		}
	})

	event.On(services.EventProductLowStock, func(alert services.LowStockAlert) {
		logger.Warn("inventory: low stock",
			"product_id", alert.ProductID,
			"sku", alert.SKU,
			"stock", alert.Stock,
		)
	})
}
