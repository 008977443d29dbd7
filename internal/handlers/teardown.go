package handlers

import (
	"github.com/rs/zerolog/log"
	"github.com/thereayou/vbase/internal/services"
	"github.com/thereayou/vbase/internal/websocket"
)

// Teardown releases the live state behind a cascade: websocket subscribers
// of deleted channels are told and dropped, and the realtime-host sessions
// are logged for the host to close. The sessions are also returned to the
// HTTP caller.
type Teardown struct {
	hub *websocket.Hub
}

func NewTeardown(hub *websocket.Hub) *Teardown {
	return &Teardown{hub: hub}
}

func (t *Teardown) Apply(m *services.Manifest) {
	if m == nil {
		return
	}
	for _, channelID := range m.ChannelIDs {
		t.hub.CloseChannel(channelID)
	}
	if len(m.SessionIDs) > 0 {
		log.Info().Strs("sessions", m.SessionIDs).Msg("sessions released")
	}
}
