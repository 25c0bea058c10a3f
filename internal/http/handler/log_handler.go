package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"go.uber.org/zap"
)

// DefaultLogLimit is the number of entries returned when no limit is given
const DefaultLogLimit = 50

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
	streamPongWait   = streamPingPeriod + 10*time.Second
)

type LogHandler struct {
	logs     *oplog.Broadcaster
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewLogHandler creates the operational log handler. Websocket upgrades are
// accepted from allowedOrigins; "*" accepts any origin.
func NewLogHandler(logs *oplog.Broadcaster, allowedOrigins []string, logger *zap.Logger) *LogHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &LogHandler{
		logs: logs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
		logger: logger,
	}
}

// LogsResponse wraps recent operational log entries
type LogsResponse struct {
	Success   bool          `json:"success"`
	Logs      []oplog.Entry `json:"logs"`
	Timestamp time.Time     `json:"timestamp"`
}

// List godoc
// @Summary Recent integration events
// @Tags Logs
// @Produce json
// @Param limit query int false "Maximum number of entries" default(50)
// @Success 200 {object} LogsResponse
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /logs [get]
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.logs.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to read operational log", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to read logs")
		return
	}
	if entries == nil {
		entries = []oplog.Entry{}
	}

	respondJSON(w, http.StatusOK, LogsResponse{
		Success:   true,
		Logs:      entries,
		Timestamp: time.Now().UTC(),
	})
}

// Stream godoc
// @Summary Live integration events
// @Description Websocket. Every new operational log entry is pushed as a JSON message.
// @Tags Logs
// @Success 101
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /logs/stream [get]
func (h *LogHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	entries, cancel := h.logs.Subscribe()
	defer cancel()

	// The reader only handles control frames and notices when the client goes away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(entry); err != nil {
				h.logger.Debug("log stream write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
