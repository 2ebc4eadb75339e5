package server

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/linguacare/internal/observe"
)

// handleLive upgrades to a websocket and pushes every turn appended to the
// conversation log as a JSON message. The feed carries only new turns;
// clients fetch the backlog via GET /v1/conversation first.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observe.Logger(ctx)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	s.metrics.LiveSubscribers.Add(ctx, 1)
	defer s.metrics.LiveSubscribers.Add(ctx, -1)
	logger.Info("live feed connected")

	for turn := range s.log.Subscribe(ctx) {
		if err := wsjson.Write(ctx, conn, turn); err != nil {
			logger.Debug("live feed write failed", "error", err)
			return
		}
	}

	// Subscription ended because the request context was cancelled.
	_ = conn.Close(websocket.StatusNormalClosure, "")
}
