package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// Stream session states over websocket until the peer leaves or the server stops
func (h *SessionHandler) watch(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket handshake failed", "error", err)
		return
	}
	defer conn.CloseNow() // nolint:errcheck

	// Peer messages are not expected; CloseRead handles control frames and cancels ctx on close
	ctx := conn.CloseRead(r.Context())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for state := range h.session.ObserveSession(ctx) {
		msg, err := json.Marshal(newStateResponse(state))
		if err != nil {
			h.logger.Error("Failed to encode session state", "error", err)
			_ = conn.Close(websocket.StatusInternalError, "encode failed")
			return
		}

		wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(wctx, websocket.MessageText, msg)
		wcancel()
		if err != nil {
			h.logger.Debug("Session watch write failed", "error", err, "close_status", websocket.CloseStatus(err))
			return
		}
	}

	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}
