package routes

import (
	"github.com/shashiranjanraj/myshop/app/controllers"
	"github.com/shashiranjanraj/myshop/config"
	"github.com/shashiranjanraj/myshop/pkg/middleware"
	"github.com/shashiranjanraj/myshop/pkg/router"
)

// RegisterAPI mounts the REST surface under /api.
//
// Throttle scopes mirror the API's traffic classes: reads share the
// "default" scope (higher limit for authenticated callers), product
// creation gets the tight "burst" scope, and the credential endpoints
// get "strict_anon" to slow down guessing.
func RegisterAPI(r *router.Router) {
	authController := controllers.NewAuthController()
	productController := controllers.NewProductController()

	readLimit := middleware.ScopedSplit("default",
		config.ThrottleUserPerMinute(), config.ThrottleAnonPerMinute())
	writeLimit := middleware.Scoped("default", config.ThrottleUserPerMinute())
	burstLimit := middleware.Scoped("burst", config.ThrottleBurstPerMinute())
	credentialLimit := middleware.Scoped("strict_anon", config.ThrottleStrictPerMinute())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", "auth.register", authController.Register, middleware.Guest, credentialLimit)
	auth.Post("/login", "auth.login", authController.Login, middleware.Guest, credentialLimit)
	auth.Post("/refresh", "auth.refresh", authController.Refresh, credentialLimit)
	auth.Get("/profile", "auth.profile", authController.Profile, middleware.Auth, writeLimit)

	products := api.Group("/products")
	products.Get("", "products.index", productController.Index, middleware.OptionalAuth, readLimit)
	products.Get("/statistics", "products.statistics", productController.Statistics, middleware.OptionalAuth, readLimit)
	products.Get("/{id}", "products.show", productController.Show, middleware.OptionalAuth, readLimit)

	products.Post("", "products.store", productController.Store, middleware.Auth, burstLimit)
	products.Put("/{id}", "products.update", productController.Update, middleware.Auth, writeLimit)
	products.Patch("/{id}", "products.patch", productController.Patch, middleware.Auth, writeLimit)
	products.Delete("/{id}", "products.destroy", productController.Destroy, middleware.Auth, writeLimit)

	products.Post("/{id}/images", "products.images.store", productController.UploadImage, middleware.Auth, writeLimit)
	products.Delete("/{id}/images/{imageID}", "products.images.destroy", productController.DestroyImage, middleware.Auth, writeLimit)
}
