package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"blogposts/app/controllers"
	"blogposts/app/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(postController *controllers.PostController) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.ContentTypeJSON)

	router.NotFoundHandler = jsonError(http.StatusNotFound, "Not found")
	router.MethodNotAllowedHandler = jsonError(http.StatusMethodNotAllowed, "Method not allowed")

	router.HandleFunc("/healthz", postController.Health).Methods("GET")

	// Posts endpoints; the feed must be registered before {id}
	router.HandleFunc("/posts", postController.Index).Methods("GET")
	router.HandleFunc("/posts", postController.Create).Methods("POST")
	router.HandleFunc("/posts/feed", postController.Feed).Methods("GET")
	router.HandleFunc("/posts/{id}", postController.Show).Methods("GET")
	router.HandleFunc("/posts/{id}", postController.Edit).Methods("PUT")
	router.HandleFunc("/posts/{id}", postController.Delete).Methods("DELETE")

	return router
}

// jsonError answers with a fixed JSON error. Router-level handlers do not
// pass through the middleware chain, so the content type is set here.
func jsonError(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	})
}

// NewServer wraps the router in an http.Server with the given timeouts.
func NewServer(addr string, router http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}
