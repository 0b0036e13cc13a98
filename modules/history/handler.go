package history

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"jelly-icon-server/modules/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - history endpoints, all behind the auth middleware
func (h *Handler) RegisterRoutes(r *mux.Router, authMW func(http.Handler) http.Handler) {
	sub := r.PathPrefix("/api/icons").Subrouter()
	sub.Use(mux.MiddlewareFunc(authMW))
	sub.HandleFunc("", h.HandleList).Methods("GET", "OPTIONS")
	sub.HandleFunc("", h.HandleInsert).Methods("POST", "OPTIONS")
	sub.HandleFunc("/upload-url", h.HandleUploadURL).Methods("POST", "OPTIONS")
	log.Println("✅ History routes registered: /api/icons, /api/icons/upload-url")
}

// HandleList - GET /api/icons
// Records for the authenticated caller, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	identity := auth.FromContext(r.Context())
	records, err := h.service.ListByUser(r.Context(), identity)
	if err != nil {
		writeHistoryError(w, err)
		return
	}

	json.NewEncoder(w).Encode(records)
}

// HandleInsert - POST /api/icons
// Metadata record after a client-side upload through a signed URL.
func (h *Handler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var params InsertParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(params.Prompt) == "" || strings.TrimSpace(params.StoragePath) == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "prompt and storagePath are required"})
		return
	}

	identity := auth.FromContext(r.Context())
	id, err := h.service.Insert(r.Context(), identity, params)
	if err != nil {
		writeHistoryError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// HandleUploadURL - POST /api/icons/upload-url
func (h *Handler) HandleUploadURL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
		return
	}

	identity := auth.FromContext(r.Context())
	signed, err := h.service.CreateSignedUploadURL(r.Context(), identity, req.FileName)
	if err != nil {
		writeHistoryError(w, err)
		return
	}

	json.NewEncoder(w).Encode(signed)
}

func writeHistoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrNotAuthenticated) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
		return
	}
	log.Printf("❌ [History] Request failed: %v", err)
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "History operation failed"})
}
