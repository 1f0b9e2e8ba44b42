package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"practice-api/internal/cache"
	"practice-api/internal/config"
	"practice-api/internal/db"
	"practice-api/internal/http/handlers"
	"practice-api/internal/http/middleware"
	"practice-api/internal/http/respond"
	"practice-api/internal/models"
	"practice-api/internal/security"
	"practice-api/internal/service"
)

func Setup(cfg *config.Config, database *db.DB, c cache.Cache, tokens *security.TokenIssuer, hasher *security.Hasher) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(service.NewAuthService(database, hasher, tokens))
	formHandler := handlers.NewFormHandler(service.NewFormService(database))
	productHandler := handlers.NewProductHandler(service.NewProductService(database, c, cfg.CacheTTL))
	orderHandler := handlers.NewOrderHandler(service.NewOrderService(database))
	blogHandler := handlers.NewBlogHandler(service.NewBlogService(database))
	adminHandler := handlers.NewAdminHandler(service.NewAdminService(database))

	authn := middleware.Authenticate(tokens)
	protected := func(h http.HandlerFunc) http.Handler { return authn(h) }
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authn(middleware.RequireRole(models.RoleAdmin)(h))
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{
			"status":      "OK",
			"message":     "Server is running",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": cfg.Environment,
		})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.Handle("/auth/me", protected(authHandler.Me)).Methods("GET")

	api.Handle("/forms/submit", protected(formHandler.Submit)).Methods("POST")

	api.HandleFunc("/products", productHandler.List).Methods("GET")
	api.HandleFunc("/products/search", productHandler.Search).Methods("GET")
	api.HandleFunc("/products/{id}", productHandler.Get).Methods("GET")
	api.Handle("/products", adminOnly(productHandler.Create)).Methods("POST")

	api.Handle("/orders", protected(orderHandler.Create)).Methods("POST")
	api.Handle("/orders", protected(orderHandler.List)).Methods("GET")
	api.Handle("/orders/{id}", protected(orderHandler.Get)).Methods("GET")
	api.Handle("/orders/{id}/status", adminOnly(orderHandler.UpdateStatus)).Methods("PATCH")

	api.HandleFunc("/blog/posts", blogHandler.ListPosts).Methods("GET")
	api.HandleFunc("/blog/posts/{slug}", blogHandler.GetPost).Methods("GET")
	api.Handle("/blog/posts", adminOnly(blogHandler.CreatePost)).Methods("POST")

	api.Handle("/users", adminOnly(adminHandler.GetAllUsers)).Methods("GET")
	api.Handle("/stats", adminOnly(adminHandler.Stats)).Methods("GET")

	// outermost so preflights, unmatched routes and panics are all logged
	return middleware.Logging(middleware.Recover(middleware.CORS(cfg.CORSOrigin)(r)))
}
