// internal/messenger/messenger.go

// Package messenger defines the outbound notification contract the engine
// renders game state through. Transports (websocket hub, terminal renderer)
// implement Messenger; the session manager calls it fire-and-forget and
// never depends on a reply.
package messenger

import "github.com/nothxbot/nothx/internal/game"

// Messenger relays game notifications to players. Implementations must not
// call back into the session manager or the game: every method is invoked
// with the game's lock held, and the state passed in should be treated as
// read-only snapshots.
type Messenger interface {
	// SendText delivers an informational message to a single channel,
	// typically an error translated for the player who caused it.
	SendText(channel, text string)

	// BroadcastText delivers a message to every human seat in the game.
	BroadcastText(g *game.Game, text string)

	// AnnounceLobby broadcasts the lobby roster after any seat change.
	AnnounceLobby(g *game.Game)

	// AnnounceAction broadcasts one resolved move: who moved, what they
	// did, the card that was up and the pot that was at stake.
	AnnounceAction(g *game.Game, seat *game.Player, move game.Move, card, pot int)

	// SendGameSummary privately sends the table state (all hands, top
	// card, pot) to one seat's channel before its turn prompt.
	SendGameSummary(g *game.Game, to *game.Player)

	// RequestAction prompts the active human for a decision. The prompt
	// notes whether passing is legal given the seat's tokens.
	RequestAction(g *game.Game, to *game.Player)

	// AnnounceScores broadcasts the score table, one entry per seat.
	AnnounceScores(g *game.Game, scores []int)

	// AnnounceWinner broadcasts the match winner.
	AnnounceWinner(g *game.Game, winner *game.Player)
}

// Nop is a Messenger that discards everything. Useful as a default and in
// tests that only care about state transitions.
type Nop struct{}

func (Nop) SendText(string, string)                                      {}
func (Nop) BroadcastText(*game.Game, string)                             {}
func (Nop) AnnounceLobby(*game.Game)                                     {}
func (Nop) AnnounceAction(*game.Game, *game.Player, game.Move, int, int) {}
func (Nop) SendGameSummary(*game.Game, *game.Player)                     {}
func (Nop) RequestAction(*game.Game, *game.Player)                       {}
func (Nop) AnnounceScores(*game.Game, []int)                             {}
func (Nop) AnnounceWinner(*game.Game, *game.Player)                      {}

var _ Messenger = Nop{}
