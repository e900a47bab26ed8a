package handlers

import (
	"log"
	"net/http"

	"github.com/fairwaylabs/clubtrack/live"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handles origin filtering for the REST surface; the socket
		// carries no mutations, so all origins are accepted here.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs upgrades the connection and joins the client to the club-wide
// room, or a squad room when ?squad=<id> is present.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	room := live.RoomClub
	if squadID := r.URL.Query().Get("squad"); squadID != "" {
		room = "squad_" + squadID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		log.Printf("failed to upgrade websocket connection: %v", err)
		return
	}

	h.hub.Register(live.NewClient(h.hub, conn, room))
}
