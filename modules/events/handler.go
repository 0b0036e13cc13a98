package events

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"jelly-icon-server/modules/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// IconCreatedEvent - pushed to the owner when a generation is persisted
type IconCreatedEvent struct {
	Type     string `json:"type"`
	RecordID string `json:"recordId,omitempty"`
	URL      string `json:"url"`
	Prompt   string `json:"prompt,omitempty"`
}

type Handler struct {
	hub      *Hub
	verifier *auth.Verifier
}

func NewHandler(hub *Hub, verifier *auth.Verifier) *Handler {
	return &Handler{hub: hub, verifier: verifier}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.HandleWebSocket)
	log.Println("✅ Events route registered: /ws")
}

// HandleWebSocket - GET /ws?token=<access token>
// Identity is verified before the upgrade; anonymous sockets are refused.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(r.Context(), auth.BearerToken(r))
	if err != nil {
		log.Printf("⚠️ [Events] Refused WebSocket: %v", err)
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [Events] WebSocket upgrade failed: %v", err)
		return
	}

	h.hub.Register(identity.Subject, ws)
}
