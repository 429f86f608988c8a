package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/realtime"
)

// RealtimeHandler upgrades authenticated connections to the change feed.
type RealtimeHandler struct {
	hub    *realtime.Hub
	logger zerolog.Logger
}

// NewRealtimeHandler creates a realtime handler instance.
func NewRealtimeHandler(hub *realtime.Hub, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		logger: logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group. The
// group must already run the JWT middleware so user locals are present.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/", websocket.New(h.handleConnection))
}

func (h *RealtimeHandler) handleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		_ = conn.Close()
		return
	}

	role, _ := conn.Locals("user_role").(string)
	admin := role == string(models.RoleAdmin)

	var collections []string
	if raw := strings.TrimSpace(conn.Query("collections")); raw != "" {
		collections = strings.Split(raw, ",")
	}

	sub := h.hub.Subscribe(collections, userID, admin)
	defer sub.Release()

	h.logger.Info().Str("user_id", userID).Bool("admin", admin).Msg("change feed connected")

	// Reader goroutine: the feed is one-way, but reads are needed to observe
	// close frames from the client.
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
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Str("user_id", userID).Msg("change feed write failed")
				return
			}
		case <-done:
			h.logger.Info().Str("user_id", userID).Msg("change feed disconnected")
			return
		}
	}
}
