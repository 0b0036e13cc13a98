package icongen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"jelly-icon-server/modules/auth"
	"jelly-icon-server/modules/common/fallback"
	"jelly-icon-server/modules/events"
	"jelly-icon-server/modules/history"
	"jelly-icon-server/modules/palette"
	"jelly-icon-server/modules/planner"
	"jelly-icon-server/modules/prompt"
)

const maxUploadBytes = 16 << 20 // uploaded logos are small; 16MB is generous

// Handler - POST /api/generate-icon. The gateway's own failures always
// surface to the caller; planner, palette and persistence are optional
// enhancements that degrade instead.
type Handler struct {
	service *Service
	planner *planner.Service
	history *history.Service
	hub     *events.Hub
}

func NewHandler(service *Service, plannerSvc *planner.Service, historySvc *history.Service, hub *events.Hub) *Handler {
	return &Handler{
		service: service,
		planner: plannerSvc,
		history: historySvc,
		hub:     hub,
	}
}

// RegisterRoutes - generation endpoint; identity optional (anonymous callers
// just skip history persistence)
func (h *Handler) RegisterRoutes(r *mux.Router, optionalAuthMW func(http.Handler) http.Handler) {
	r.Handle("/api/generate-icon",
		optionalAuthMW(http.HandlerFunc(h.HandleGenerate))).Methods("POST", "OPTIONS")
	log.Println("✅ Generation route registered: /api/generate-icon")
}

// HandleGenerate - accepts application/json or multipart/form-data (logo file
// attached), responds 200 {url}, 400 {error} on bad prompt, 500 {error} else.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	req, sourceImage, sourceName, err := parseGenerateRequest(r)
	if err != nil {
		log.Printf("❌ [GenerateIcon] Invalid request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "Invalid request body"})
		return
	}

	description := strings.TrimSpace(req.Prompt)
	if description == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "Invalid prompt"})
		return
	}

	finalPrompt := h.resolvePrompt(r.Context(), req, description, sourceImage)

	result, err := h.service.Generate(r.Context(), &Request{
		Prompt:      finalPrompt,
		Model:       req.Model,
		Size:        req.Size,
		Quality:     req.Quality,
		SourceImage: sourceImage,
		SourceName:  sourceName,
	})
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	// Bookkeeping never blocks the primary result
	if identity := auth.FromContext(r.Context()); identity != nil {
		h.persistBestEffort(r.Context(), identity, finalPrompt, req.Model, sourceName, result.URL)
	}

	json.NewEncoder(w).Encode(result)
}

// resolvePrompt - wrap the description in the canonical jelly specification,
// parameterized by the extracted palette when a logo was uploaded, then
// optionally refined by the planner. Every enhancement degrades silently.
func (h *Handler) resolvePrompt(ctx context.Context, req *generateIconRequest, description string, sourceImage []byte) string {
	opts := &prompt.Options{
		BaseColor: req.BaseColor,
		IconColor: req.IconColor,
	}

	if len(sourceImage) > 0 && (opts.BaseColor == "" || opts.IconColor == "") {
		if pal, err := palette.Extract(sourceImage); err != nil {
			log.Printf("⚠️ [GenerateIcon] Palette extraction degraded to default colors: %v", err)
		} else {
			if opts.BaseColor == "" {
				opts.BaseColor = pal.BaseColor
			}
			if opts.IconColor == "" {
				opts.IconColor = pal.IconColor
			}
		}
	}

	finalPrompt := prompt.BuildEnhancedPrompt(description, opts)

	if req.UsePlanner {
		finalPrompt = fallback.StringOr("Planner", func() (string, error) {
			return h.planner.Plan(ctx, finalPrompt)
		}, finalPrompt)
	}

	return finalPrompt
}

// persistBestEffort - store the result and notify the owner's open sessions
func (h *Handler) persistBestEffort(ctx context.Context, identity *auth.Identity, promptText, model, sourceName, imageURL string) {
	if h.history == nil {
		return
	}

	fallback.Do("History", func() error {
		recordID, err := h.history.SaveFromURL(ctx, identity, history.SaveParams{
			Prompt:     promptText,
			ImageURL:   imageURL,
			Model:      model,
			SourceName: sourceName,
		})
		if err != nil {
			return err
		}

		h.hub.Publish(identity.Subject, events.IconCreatedEvent{
			Type:     "icon_created",
			RecordID: recordID,
			URL:      imageURL,
		})
		return nil
	})
}

// parseGenerateRequest - JSON body or multipart form with an attached file
func parseGenerateRequest(r *http.Request) (*generateIconRequest, []byte, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, nil, "", err
		}

		req := &generateIconRequest{
			Prompt:     r.FormValue("prompt"),
			Model:      r.FormValue("model"),
			Size:       r.FormValue("size"),
			Quality:    r.FormValue("quality"),
			UsePlanner: r.FormValue("usePlanner") == "true",
			BaseColor:  r.FormValue("baseColor"),
			IconColor:  r.FormValue("iconColor"),
		}

		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil, "", nil
		}
		if err != nil {
			return nil, nil, "", err
		}
		defer file.Close()

		sourceImage, err := io.ReadAll(file)
		if err != nil {
			return nil, nil, "", err
		}
		return req, sourceImage, header.Filename, nil
	}

	var req generateIconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, "", err
	}
	return &req, nil, "", nil
}

// writeGenerateError - map the gateway taxonomy onto the wire contract:
// 400 for caller errors, 500 with a cause-specific message for the rest
func writeGenerateError(w http.ResponseWriter, err error) {
	var message string
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ErrInvalidInput):
		status = http.StatusBadRequest
		message = "Invalid prompt"
	case errors.Is(err, ErrMissingCredential):
		message = "Server configuration error"
	case errors.Is(err, ErrUpstreamTimeout):
		message = "Image generation timed out, please try again"
	case errors.Is(err, ErrNoImage):
		message = "No image generated"
	case errors.Is(err, ErrUpstream):
		// Provider message passes through when present
		message = strings.TrimPrefix(err.Error(), ErrUpstream.Error()+": ")
	case errors.Is(err, ErrTransport):
		message = "Failed to reach image provider"
	default:
		message = "Server error"
	}

	log.Printf("❌ [GenerateIcon] %v", err)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}
