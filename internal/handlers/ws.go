// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nothxbot/nothx/internal/game"
	"github.com/nothxbot/nothx/internal/session"
)

// Command is the JSON shape of every inbound client message.
type Command struct {
	Type string `json:"type"`           // join, leave, add_bot, remove_bot, start, move, scores
	Name string `json:"name,omitempty"` // display name, for join
	Move string `json:"move,omitempty"` // TAKE or PASS, for move
}

// WSHandler upgrades the connection, assigns the client an opaque identity
// and channel, and pumps commands into the session manager. The socket is
// the player's channel for the lifetime of the connection; when it drops,
// the player is treated as having left.
func WSHandler(logger *logrus.Logger, hub *Hub, mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"nothx"},
			OriginPatterns: []string{"*"}, // tighten for production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal error")

		if c.Subprotocol() != "nothx" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'nothx' subprotocol")
			return
		}

		client := &Client{
			Identity: uuid.NewString(),
			Channel:  uuid.NewString(),
			Out:      make(chan []byte, 64),
		}
		hub.Register(client)
		logger.WithFields(logrus.Fields{
			"identity": client.Identity,
			"remote":   r.RemoteAddr,
		}).Info("client connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go writePump(ctx, c, client)

		hub.SendText(client.Channel, "Hi player, send {\"type\":\"join\",\"name\":\"...\"} to find a game!")

		readCommands(ctx, c, client, hub, mgr, logger)

		// A dropped connection counts as leaving: the seat is removed in
		// lobby or handed to a bot mid-match.
		if err := mgr.HandleLeave(client.Identity); err != nil && !errors.Is(err, game.ErrNotFound) {
			logger.WithError(err).Warn("cleanup leave failed")
		}
		hub.Unregister(client)
		logger.WithField("identity", client.Identity).Info("client disconnected")
		c.Close(websocket.StatusNormalClosure, "bye")
	}
}

// writePump drains the client's outbound queue onto the socket until the
// queue closes or the context ends.
func writePump(ctx context.Context, c *websocket.Conn, client *Client) {
	for {
		select {
		case msg, ok := <-client.Out:
			if !ok {
				return
			}
			if err := c.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// readCommands decodes client commands and dispatches them until the socket
// closes.
func readCommands(ctx context.Context, c *websocket.Conn, client *Client, hub *Hub, mgr *session.Manager, logger *logrus.Logger) {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			hub.SendText(client.Channel, "Could not parse that command.")
			continue
		}
		if err := dispatch(client, &cmd, mgr); err != nil {
			hub.SendText(client.Channel, friendlyError(err))
			logger.WithFields(logrus.Fields{
				"identity": client.Identity,
				"command":  cmd.Type,
			}).WithError(err).Debug("command rejected")
		}
	}
}

// dispatch routes one command into the session manager.
func dispatch(client *Client, cmd *Command, mgr *session.Manager) error {
	switch cmd.Type {
	case "join":
		name := cmd.Name
		if name == "" {
			name = "Player" + client.Identity[:4]
		}
		return mgr.HandleJoin(client.Identity, client.Channel, name)
	case "leave":
		return mgr.HandleLeave(client.Identity)
	case "add_bot":
		return mgr.HandleAddBot(client.Channel)
	case "remove_bot":
		return mgr.HandleRemoveBot(client.Channel)
	case "start":
		return mgr.HandleStart(client.Channel)
	case "move":
		mv := game.Move(cmd.Move)
		if mv != game.MoveTake && mv != game.MovePass {
			return fmt.Errorf("move must be TAKE or PASS: %w", game.ErrIllegalTransition)
		}
		return mgr.HandleMove(client.Identity, mv)
	case "scores":
		return mgr.HandleScores(client.Channel)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd.Type, game.ErrIllegalTransition)
	}
}

// friendlyError maps engine errors onto short player-facing texts.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return "You are not in a game!"
	case errors.Is(err, game.ErrOutOfTurn):
		return "It is not your turn!"
	case errors.Is(err, game.ErrIllegalTransition):
		return "You can't do that right now: " + err.Error()
	default:
		return "Something went wrong."
	}
}
