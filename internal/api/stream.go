package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// wsStream reads service events from a websocket registered through the
// devices endpoint.
type wsStream struct {
	conn *websocket.Conn
}

type wireEvent struct {
	Type       string `json:"type"`
	ResourceID string `json:"resourceId"`
	RoomID     string `json:"roomId,omitempty"`
	ActorID    string `json:"actorId,omitempty"`
}

// Events registers a device and dials its websocket. Each call opens a
// fresh stream; the worker owns reconnection.
func (c *restClient) Events(ctx context.Context) (EventStream, error) {
	deviceURL := c.deviceURL
	if deviceURL == "" {
		var device struct {
			WebSocketURL string `json:"webSocketUrl"`
		}
		if _, err := c.do(ctx, http.MethodPost, c.baseURL+"/devices", map[string]string{"name": "teamterm"}, &device); err != nil {
			return nil, errors.Wrap(err, "register device")
		}
		if device.WebSocketURL == "" {
			return nil, errors.New("device registration returned no websocket url")
		}
		deviceURL = device.WebSocketURL
		c.deviceURL = deviceURL
	}

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	header := http.Header{"Authorization": {"Bearer " + c.token}}
	conn, resp, err := dialer.DialContext(ctx, deviceURL, header)
	if err != nil {
		// A dead device registration must not be reused.
		c.deviceURL = ""
		if resp != nil {
			return nil, errors.Wrapf(err, "dial event socket: status %d", resp.StatusCode)
		}
		return nil, errors.Wrap(err, "dial event socket")
	}
	log.Debug().Str("url", deviceURL).Msg("event socket open")
	return &wsStream{conn: conn}, nil
}

func (s *wsStream) Next(ctx context.Context) (Event, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-done:
		}
	}()

	for {
		var w wireEvent
		if err := s.conn.ReadJSON(&w); err != nil {
			if ctx.Err() != nil {
				return Event{}, ctx.Err()
			}
			return Event{}, errors.Wrap(err, "read event")
		}
		switch ActivityType(w.Type) {
		case MessagePosted, MessageUpdated, MessageDeleted, RoomCreated, RoomUpdated:
			return Event{
				Type:       ActivityType(w.Type),
				ResourceID: w.ResourceID,
				RoomID:     w.RoomID,
				ActorID:    w.ActorID,
			}, nil
		default:
			log.Trace().Str("type", w.Type).Msg("ignoring event")
		}
	}
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
