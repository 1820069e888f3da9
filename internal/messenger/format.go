// internal/messenger/format.go
package messenger

import (
	"fmt"
	"strings"

	"github.com/nothxbot/nothx/internal/game"
)

// Plain-text renderings shared by transports.

// FormatLobby renders the lobby roster and capacity.
func FormatLobby(g *game.Game) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game lobby (%d-%d players to start)\n\nPlayers:\n", game.MinSeatsToStart, game.MaxSeats)
	for _, p := range g.Players {
		b.WriteString(p.Name)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatAction renders one resolved move against the card and pot it was
// decided on.
func FormatAction(seat *game.Player, move game.Move, card, pot int) string {
	return fmt.Sprintf("%s: %s on card %d [pot: %d]", seat.Name, move, card, pot)
}

// FormatSummary renders the full table state: every hand, the revealed card
// and the pot.
func FormatSummary(g *game.Game) string {
	var b strings.Builder
	for _, p := range g.Players {
		fmt.Fprintf(&b, "%s: %v\n", p.Name, p.Hand)
	}
	if top, ok := g.TopCard(); ok {
		fmt.Fprintf(&b, "\nCard up: %d\nPot: %d tokens", top, g.Pot)
	}
	return b.String()
}

// FormatPrompt renders the turn prompt for a seat, noting when a forced
// take is coming because the seat cannot pay to pass.
func FormatPrompt(to *game.Player) string {
	if to.Tokens <= 0 {
		return "Your turn! You are out of tokens, so you must TAKE."
	}
	return fmt.Sprintf("Your turn! You have %d tokens. TAKE or PASS?", to.Tokens)
}

// FormatScores renders the final score table in seat order.
func FormatScores(g *game.Game, scores []int) string {
	var b strings.Builder
	b.WriteString("Scores:\n")
	for i, p := range g.Players {
		fmt.Fprintf(&b, "%s: %d\n", p.Name, scores[i])
	}
	return b.String()
}

// FormatWinner renders the winner announcement.
func FormatWinner(winner *game.Player) string {
	return fmt.Sprintf("Game over. %s is the winner!", winner.Name)
}
