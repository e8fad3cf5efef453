package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/ysxx86/classreport-go-api/internal/service"
)

// ProgressHandler streams export progress updates over a websocket. Closing
// the socket only detaches the listener; the batch itself keeps running to
// completion.
type ProgressHandler struct {
	broker *service.ProgressBroker
	logger zerolog.Logger
}

// NewProgressHandler constructs a progress handler.
func NewProgressHandler(broker *service.ProgressBroker, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		broker: broker,
		logger: logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register wires the websocket upgrade route.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Use("/:batchID/progress/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/:batchID/progress/ws", websocket.New(h.handleConnection))
}

func (h *ProgressHandler) handleConnection(conn *websocket.Conn) {
	batchID := strings.TrimSpace(conn.Params("batchID"))
	if batchID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "batch id required"))
		_ = conn.Close()
		return
	}

	updates, cancel := h.broker.Subscribe(batchID)
	defer cancel()

	h.logger.Info().Str("batch_id", batchID).Msg("progress websocket connected")
	defer h.logger.Info().Str("batch_id", batchID).Msg("progress websocket disconnected")

	// Drain client frames so close frames are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
			if update.Done {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "export finished"))
				return
			}
		case <-done:
			return
		}
	}
}
