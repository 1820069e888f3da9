// internal/game/game.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Move is a turn decision: take the revealed card plus the pot, or pay one
// token into the pot to pass.
type Move string

const (
	MoveTake Move = "TAKE"
	MovePass Move = "PASS"
)

// State describes where a game is in its lifecycle.
type State string

const (
	StateLobby    State = "lobby"
	StateActive   State = "active"
	StateFinished State = "finished"
)

const (
	// MaxSeats caps a table at seven seats, humans and bots combined.
	MaxSeats = 7

	// MinSeatsToStart is the seat count required before a match may begin.
	// The tabletop game technically plays with two, but two-seat matches
	// degenerate into pot races, so three is the floor here.
	MinSeatsToStart = 3

	// TurnNotStarted is the turn index sentinel for a game still in lobby.
	TurnNotStarted = -1
)

// Game holds the entire state for a single match in memory: the seats in
// turn order, the shrinking deck, whose turn it is and the current pot.
//
// Mu guards all fields. The session manager holds it across every action and
// the advance chain that follows, so one external event appears atomic; the
// methods themselves assume the lock is held.
type Game struct {
	ID uuid.UUID

	Players []*Player
	Turn    int
	Pot     int

	deck   *Deck
	rng    *rand.Rand
	botSeq int

	Mu sync.Mutex
}

// NewGame builds a fresh lobby with a newly shuffled deck. A nil rng gets a
// time-seeded source; tests pass a fixed seed for reproducible shuffles and
// bot decisions.
func NewGame(rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{
		ID:   uuid.New(),
		Turn: TurnNotStarted,
		deck: NewDeck(rng),
		rng:  rng,
	}
}

// State reports the game's lifecycle state.
func (g *Game) State() State {
	switch {
	case g.Turn == TurnNotStarted:
		return StateLobby
	case g.deck.Empty():
		return StateFinished
	default:
		return StateActive
	}
}

// TopCard returns the revealed card. ok is false once the deck is empty.
func (g *Game) TopCard() (card int, ok bool) {
	return g.deck.Top()
}

// DeckLen reports how many cards remain undealt.
func (g *Game) DeckLen() int {
	return g.deck.Len()
}

// AddHuman appends a human seat. Seats can only be added in lobby, up to
// MaxSeats.
func (g *Game) AddHuman(id, channel, name string) (*Player, error) {
	if err := g.checkCanSeat(); err != nil {
		return nil, err
	}
	p := NewHumanPlayer(id, channel, name)
	g.Players = append(g.Players, p)
	return p, nil
}

// AddBot appends a bot seat with a synthesized name. Names come from a
// per-game counter so two bots at the same table can never collide.
func (g *Game) AddBot() (*Player, error) {
	if err := g.checkCanSeat(); err != nil {
		return nil, err
	}
	g.botSeq++
	p := NewBotPlayer(fmt.Sprintf("Bot%03d", g.botSeq))
	g.Players = append(g.Players, p)
	return p, nil
}

func (g *Game) checkCanSeat() error {
	if g.State() != StateLobby {
		return fmt.Errorf("game %s already started: %w", g.ID, ErrIllegalTransition)
	}
	if len(g.Players) >= MaxSeats {
		return fmt.Errorf("game %s is full: %w", g.ID, ErrIllegalTransition)
	}
	return nil
}

// RemovePlayer removes the named seat. Seats only leave the table in lobby;
// a mid-match departure is handled by ConvertToBot instead.
func (g *Game) RemovePlayer(name string) (*Player, error) {
	if g.State() != StateLobby {
		return nil, fmt.Errorf("game %s already started: %w", g.ID, ErrIllegalTransition)
	}
	for i, p := range g.Players {
		if p.Name == name {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return p, nil
		}
	}
	return nil, fmt.Errorf("player %q: %w", name, ErrNotFound)
}

// LastBot returns the most recently seated bot, or nil if there is none.
func (g *Game) LastBot() *Player {
	for i := len(g.Players) - 1; i >= 0; i-- {
		if g.Players[i].IsBot() {
			return g.Players[i]
		}
	}
	return nil
}

// Start transitions lobby -> active, handing the first seat the opening
// decision.
func (g *Game) Start() error {
	if g.State() != StateLobby {
		return fmt.Errorf("game %s already started: %w", g.ID, ErrIllegalTransition)
	}
	if len(g.Players) < MinSeatsToStart {
		return fmt.Errorf("need at least %d players to start: %w", MinSeatsToStart, ErrIllegalTransition)
	}
	g.Turn = 0
	return nil
}

// ActivePlayer returns the seat whose turn it is, or nil while the game is
// in lobby.
func (g *Game) ActivePlayer() *Player {
	if g.Turn < 0 || g.Turn >= len(g.Players) {
		return nil
	}
	return g.Players[g.Turn]
}

// DecideBotAction picks a move for the active bot seat. It never mutates
// game state, though it does advance the game's random source.
//
// Taking is forced whenever it is immediately profitable (card value below
// pot plus the returned token). Otherwise the bot flips a weighted coin:
// the pot votes for taking, the card's face value votes against, and a card
// that would extend an existing run counts only half against.
func (g *Game) DecideBotAction() Move {
	top, ok := g.deck.Top()
	if !ok {
		return MoveTake
	}
	if top < g.Pot+1 {
		return MoveTake
	}
	take := float64(g.Pot + 1)
	pass := float64(top) * 2
	if g.ActivePlayer().HasAdjacentCard(top) {
		pass = float64(top) / 2
	}
	if g.rng.Float64()*(take+pass) < take {
		return MoveTake
	}
	return MovePass
}

// MakePlayerMove applies the active seat's decision and rotates the turn to
// the next seat. A seat with no tokens cannot pay to pass, so its move is
// forced to TAKE regardless of input; the resolved move is returned.
//
// PASS moves one token from the seat to the pot. TAKE moves the whole pot
// to the seat and the top card into its hand. Either way the turn advances,
// so no seat is ever asked twice about the same card.
func (g *Game) MakePlayerMove(move Move) (Move, error) {
	if g.State() != StateActive {
		return "", fmt.Errorf("game %s is not active: %w", g.ID, ErrIllegalTransition)
	}
	p := g.ActivePlayer()
	if p.Tokens <= 0 {
		move = MoveTake
	}
	switch move {
	case MovePass:
		p.Tokens--
		g.Pot++
	case MoveTake:
		p.Tokens += g.Pot
		g.Pot = 0
		card, ok := g.deck.Draw()
		if !ok {
			// unreachable: StateActive guarantees a non-empty deck
			return "", fmt.Errorf("game %s: draw from empty deck: %w", g.ID, ErrIllegalTransition)
		}
		p.TakeCard(card)
	default:
		return "", fmt.Errorf("unknown move %q: %w", move, ErrIllegalTransition)
	}
	g.Turn = (g.Turn + 1) % len(g.Players)
	return move, nil
}

// ComputeScores returns every seat's score in seat order. It reads but never
// mutates state, so calling it mid-match previews the standings.
func (g *Game) ComputeScores() []int {
	scores := make([]int, len(g.Players))
	for i, p := range g.Players {
		scores[i] = p.Score()
	}
	return scores
}

// Winner returns the seat with the minimum score and its index. Ties go to
// the lower seat index. Returns nil for an empty table.
func (g *Game) Winner() (*Player, int) {
	if len(g.Players) == 0 {
		return nil, -1
	}
	scores := g.ComputeScores()
	best := 0
	for i, s := range scores {
		if s < scores[best] {
			best = i
		}
	}
	return g.Players[best], best
}

// NumHumans counts the human-controlled seats.
func (g *Game) NumHumans() int {
	n := 0
	for _, p := range g.Players {
		if !p.IsBot() {
			n++
		}
	}
	return n
}

// NumBots counts the bot-controlled seats.
func (g *Game) NumBots() int {
	return len(g.Players) - g.NumHumans()
}

// PlayerByIdentity returns the human seat with the given external identity,
// or nil if no seat matches. Bot seats never match.
func (g *Game) PlayerByIdentity(id string) *Player {
	for _, p := range g.Players {
		if pid, ok := p.Identity(); ok && pid == id {
			return p
		}
	}
	return nil
}

// PlayerByChannel returns the human seat reachable at the given channel, or
// nil if no seat matches.
func (g *Game) PlayerByChannel(channel string) *Player {
	for _, p := range g.Players {
		if ch, ok := p.Channel(); ok && ch == channel {
			return p
		}
	}
	return nil
}
