// internal/handlers/hub.go
package handlers

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nothxbot/nothx/internal/game"
	"github.com/nothxbot/nothx/internal/messenger"
)

// Client is one connected player: an opaque identity, the channel their
// notifications are addressed to, and an outbound queue drained by the
// connection's write pump.
type Client struct {
	Identity string
	Channel  string
	Out      chan []byte
}

// Hub tracks connected clients by channel and renders the engine's outbound
// notifications to them. It implements messenger.Messenger.
//
// Messenger methods are called with game locks held, so they must never
// block: writes go through non-blocking channel sends and slow clients drop
// messages instead of stalling the engine.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client

	log *logrus.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		clients: make(map[string]*Client),
		log:     logger,
	}
}

// Register adds a connected client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.Channel] = c
}

// Unregister removes a client and closes its outbound queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.Channel]; ok && cur == c {
		delete(h.clients, c.Channel)
		close(c.Out)
	}
}

// Notification is the JSON shape of every outbound message.
type Notification struct {
	Type string `json:"type"`
	Text string `json:"text"`

	// CanPass rides along on turn prompts so clients can grey out the
	// PASS option when a forced take is coming.
	CanPass *bool `json:"canPass,omitempty"`
}

func (h *Hub) send(channel string, n Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.log.WithError(err).Warn("failed to marshal notification")
		return
	}
	h.mu.Lock()
	c, ok := h.clients[channel]
	h.mu.Unlock()
	if !ok {
		return
	}
	select {
	case c.Out <- data:
	default:
		h.log.WithFields(logrus.Fields{"channel": channel, "type": n.Type}).
			Warn("client queue full, dropped notification")
	}
}

// SendText implements messenger.Messenger.
func (h *Hub) SendText(channel, text string) {
	h.send(channel, Notification{Type: "text", Text: text})
}

// BroadcastText implements messenger.Messenger.
func (h *Hub) BroadcastText(g *game.Game, text string) {
	for _, p := range g.Players {
		if ch, ok := p.Channel(); ok {
			h.send(ch, Notification{Type: "text", Text: text})
		}
	}
}

// AnnounceLobby implements messenger.Messenger.
func (h *Hub) AnnounceLobby(g *game.Game) {
	h.BroadcastText(g, messenger.FormatLobby(g))
}

// AnnounceAction implements messenger.Messenger.
func (h *Hub) AnnounceAction(g *game.Game, seat *game.Player, move game.Move, card, pot int) {
	h.BroadcastText(g, messenger.FormatAction(seat, move, card, pot))
}

// SendGameSummary implements messenger.Messenger.
func (h *Hub) SendGameSummary(g *game.Game, to *game.Player) {
	if ch, ok := to.Channel(); ok {
		h.SendText(ch, messenger.FormatSummary(g))
	}
}

// RequestAction implements messenger.Messenger.
func (h *Hub) RequestAction(g *game.Game, to *game.Player) {
	ch, ok := to.Channel()
	if !ok {
		return
	}
	canPass := to.Tokens > 0
	h.send(ch, Notification{
		Type:    "turn_prompt",
		Text:    messenger.FormatPrompt(to),
		CanPass: &canPass,
	})
}

// AnnounceScores implements messenger.Messenger.
func (h *Hub) AnnounceScores(g *game.Game, scores []int) {
	h.BroadcastText(g, messenger.FormatScores(g, scores))
}

// AnnounceWinner implements messenger.Messenger.
func (h *Hub) AnnounceWinner(g *game.Game, winner *game.Player) {
	h.BroadcastText(g, messenger.FormatWinner(winner))
}

var _ messenger.Messenger = (*Hub)(nil)
