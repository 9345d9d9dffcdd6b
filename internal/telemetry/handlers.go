package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/server"
	"github.com/HerbHall/sentinel/pkg/models"
)

const streamWriteTimeout = 5 * time.Second

// Snapshot is the payload of the snapshot route and of every stream message.
type Snapshot struct {
	Type         string         `json:"type"`
	Trigger      string         `json:"trigger,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Stores       []models.Store `json:"stores"`
	ActiveAlerts []models.Alert `json:"active_alerts"`
}

// Routes implements plugin.Plugin.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/snapshot", Handler: m.handleSnapshot},
		{Method: "GET", Path: "/stream", Handler: m.handleStream},
	}
}

func (m *Module) snapshot(trigger string) Snapshot {
	s := m.state.Snapshot()
	return Snapshot{
		Type:         "snapshot",
		Trigger:      trigger,
		Timestamp:    m.now().UTC(),
		Stores:       s.Stores,
		ActiveAlerts: s.ActiveAlerts(),
	}
}

// handleSnapshot returns the current stores and active alerts.
//
//	@Summary		Telemetry snapshot
//	@Description	Returns every store with its assets and the active alerts.
//	@Tags			telemetry
//	@Produce		json
//	@Success		200 {object} Snapshot
//	@Router			/telemetry/snapshot [get]
func (m *Module) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.snapshot(""))
}

// handleStream upgrades to a WebSocket and pushes a Snapshot on connect and
// after every event published on the bus. Bursts are coalesced: a client
// that falls behind receives only the latest state.
//
//	@Summary		Live telemetry stream
//	@Description	WebSocket feed of Snapshot messages.
//	@Tags			telemetry
//	@Router			/telemetry/stream [get]
func (m *Module) handleStream(w http.ResponseWriter, r *http.Request) {
	// The server's write timeout must not apply to a long-lived stream.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: m.allowedOrigins,
	})
	if err != nil {
		m.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(m.lifetime())

	updates := make(chan string, 1)
	if m.bus != nil {
		unsub := m.bus.SubscribeAll(func(_ context.Context, e plugin.Event) {
			select {
			case updates <- e.Topic:
			default:
			}
		})
		defer unsub()
	}

	m.logger.Debug("stream client connected", zap.String("remote", r.RemoteAddr))
	if err := m.send(ctx, conn, "connected"); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("stream client disconnected", zap.String("remote", r.RemoteAddr))
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case topic := <-updates:
			if err := m.send(ctx, conn, topic); err != nil {
				if !errors.Is(err, context.Canceled) {
					m.logger.Debug("stream write failed", zap.Error(err))
				}
				return
			}
		}
	}
}

func (m *Module) send(ctx context.Context, conn *websocket.Conn, trigger string) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, m.snapshot(trigger))
}
