package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"jelly-icon-server/modules/auth"
	"jelly-icon-server/modules/common/config"
	redisclient "jelly-icon-server/modules/common/redis"
	"jelly-icon-server/modules/events"
	"jelly-icon-server/modules/history"
	"jelly-icon-server/modules/icongen"
	"jelly-icon-server/modules/planner"
)

func main() {
	log.Println("🚀 Starting Jelly Icon Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Optional planner cache; nil client just disables caching
	rdb := redisclient.Connect(cfg)

	verifier := auth.NewVerifier(cfg)
	plannerService := planner.NewService(cfg, rdb)
	historyService := history.NewService(cfg)
	hub := events.NewHub()

	iconHandler := icongen.NewHandler(icongen.NewService(cfg), plannerService, historyService, hub)
	historyHandler := history.NewHandler(historyService)
	eventsHandler := events.NewHandler(hub, verifier)

	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")

	iconHandler.RegisterRoutes(r, verifier.OptionalMiddleware)
	historyHandler.RegisterRoutes(r, verifier.Middleware)
	eventsHandler.RegisterRoutes(r)

	log.Printf("✅ Server starting on port %s", cfg.Port)
	log.Printf("🔗 Endpoints:")
	log.Printf("   POST /api/generate-icon")
	log.Printf("   GET  /api/icons")
	log.Printf("   POST /api/icons")
	log.Printf("   POST /api/icons/upload-url")
	log.Printf("   WS   /ws")

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

// enableCORS - browser clients call this API from another origin
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "jelly-icon-server",
	})
}
