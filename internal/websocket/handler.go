package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// Authenticate resolves the user behind an upgrade request.
type Authenticate func(r *http.Request) (userID string, err error)

// HandleWebSocket returns an HTTP handler that authenticates the request,
// upgrades it and runs it as a Hub client until it closes.
// Browsers cannot set headers on upgrades, so authenticate may read a query parameter.
func HandleWebSocket(hub *Hub, authenticate Authenticate, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authenticate(r)
		if err != nil {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			hub.logger.Warn("Websocket accept failed", "user_id", userID, "error", err)
			return
		}
		defer conn.CloseNow()

		hub.logger.Debug("Websocket connected", "user_id", userID)
		NewClient(hub, conn, userID).Run(r.Context())
		hub.logger.Debug("Websocket disconnected", "user_id", userID)
	}
}
