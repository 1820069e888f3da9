// internal/session/manager.go

// Package session tracks every live game in the process, routes external
// actions to the right one and drives automated turns.
package session

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nothxbot/nothx/internal/game"
	"github.com/nothxbot/nothx/internal/messenger"
)

// Manager owns the collection of live games. It is the only cross-game
// shared state; mu serializes access to it, and every handler additionally
// holds the target game's lock for the whole action plus any bot turns that
// follow, so each external event appears atomic. Lock order is always
// manager first, then game.
type Manager struct {
	mu    sync.Mutex
	games []*game.Game // insertion order decides matchmaking priority

	msgr messenger.Messenger
	log  *logrus.Logger
}

// NewManager builds a manager that renders notifications through m. A nil
// messenger discards them; a nil logger gets a default logrus logger.
func NewManager(m messenger.Messenger, logger *logrus.Logger) *Manager {
	if m == nil {
		m = messenger.Nop{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{msgr: m, log: logger}
}

// NumGames reports how many games are currently live.
func (m *Manager) NumGames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}

// HandleJoin seats an identity in the first open lobby, creating a fresh one
// when none has room. An identity already seated anywhere is rejected.
func (m *Manager) HandleJoin(identity, channel, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findGameByIdentity(identity) != nil || m.findGameByChannel(channel) != nil {
		return fmt.Errorf("already in a game: %w", game.ErrIllegalTransition)
	}
	g := m.findOpenGame()
	if g == nil {
		g = game.NewGame(nil)
		m.games = append(m.games, g)
		m.log.WithField("game", g.ID).Info("game created")
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if _, err := g.AddHuman(identity, channel, name); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"game": g.ID, "player": name}).Info("player joined")
	m.msgr.AnnounceLobby(g)
	return nil
}

// HandleLeave removes the identity's presence from its game. In lobby the
// seat is removed outright; mid-match it is converted to a bot and the game
// advances immediately, since the departing human may have been the active
// seat. A game whose last human leaves is cancelled either way.
func (m *Manager) HandleLeave(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGameByIdentity(identity)
	if g == nil {
		return fmt.Errorf("not in a game: %w", game.ErrNotFound)
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.PlayerByIdentity(identity)
	m.log.WithFields(logrus.Fields{"game": g.ID, "player": p.Name}).Info("player left")

	if g.State() == game.StateLobby {
		if _, err := g.RemovePlayer(p.Name); err != nil {
			return err
		}
		if g.NumHumans() == 0 {
			m.removeGame(g)
			return nil
		}
		m.msgr.AnnounceLobby(g)
		return nil
	}

	p.ConvertToBot()
	if g.NumHumans() == 0 {
		// cancellation beats whatever advance would have done next
		m.removeGame(g)
		return nil
	}
	return m.advance(g)
}

// HandleAddBot seats a bot in the lobby the channel belongs to.
func (m *Manager) HandleAddBot(channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGameByChannel(channel)
	if g == nil {
		return fmt.Errorf("not in a game: %w", game.ErrNotFound)
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	b, err := g.AddBot()
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"game": g.ID, "player": b.Name}).Info("bot added")
	m.msgr.AnnounceLobby(g)
	return nil
}

// HandleRemoveBot removes the most recently seated bot from the lobby the
// channel belongs to.
func (m *Manager) HandleRemoveBot(channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGameByChannel(channel)
	if g == nil {
		return fmt.Errorf("not in a game: %w", game.ErrNotFound)
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	b := g.LastBot()
	if b == nil {
		return fmt.Errorf("no bot to remove: %w", game.ErrNotFound)
	}
	if _, err := g.RemovePlayer(b.Name); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"game": g.ID, "player": b.Name}).Info("bot removed")
	m.msgr.AnnounceLobby(g)
	return nil
}

// HandleStart begins the match the channel's lobby has gathered for.
func (m *Manager) HandleStart(channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGameByChannel(channel)
	if g == nil {
		return fmt.Errorf("not in a game: %w", game.ErrNotFound)
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.State() != game.StateLobby {
		return fmt.Errorf("game %s already started: %w", g.ID, game.ErrIllegalTransition)
	}
	return m.advance(g)
}

// HandleMove applies a TAKE or PASS submitted by a human seat, then advances
// through any bot turns that follow. Moves from anyone but the active seat
// are rejected without side effects.
func (m *Manager) HandleMove(identity string, move game.Move) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGameByIdentity(identity)
	if g == nil {
		return fmt.Errorf("not in a game: %w", game.ErrNotFound)
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.State() != game.StateActive {
		return fmt.Errorf("game has not started: %w", game.ErrIllegalTransition)
	}
	p := g.ActivePlayer()
	if id, ok := p.Identity(); !ok || id != identity {
		return fmt.Errorf("not your turn: %w", game.ErrOutOfTurn)
	}

	card, _ := g.TopCard()
	pot := g.Pot
	resolved, err := g.MakePlayerMove(move)
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{
		"game": g.ID, "player": p.Name, "move": resolved, "card": card, "pot": pot,
	}).Info("player moved")
	m.msgr.AnnounceAction(g, p, resolved, card, pot)
	return m.advance(g)
}

// HandleScores broadcasts the current standings of the channel's game.
func (m *Manager) HandleScores(channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.findGameByChannel(channel)
	if g == nil {
		return fmt.Errorf("not in a game: %w", game.ErrNotFound)
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	m.msgr.AnnounceScores(g, g.ComputeScores())
	return nil
}

// RunBotMatch seats n bots in a fresh game and drives it to completion in
// one call. Used by the local simulator; rng may be nil for a time-seeded
// source.
func (m *Manager) RunBotMatch(n int, rng *rand.Rand) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := game.NewGame(rng)
	m.games = append(m.games, g)
	g.Mu.Lock()
	defer g.Mu.Unlock()
	for i := 0; i < n; i++ {
		if _, err := g.AddBot(); err != nil {
			m.removeGame(g)
			return err
		}
	}
	if err := m.advance(g); err != nil {
		if g.State() == game.StateLobby {
			// never got off the ground, e.g. too few seats
			m.removeGame(g)
		}
		return err
	}
	return nil
}

// advance drives the game to its next decision point. A lobby is started
// first. Bot turns resolve synchronously, one after another, until a human
// seat is reached (prompt it and return, the suspension point) or the deck
// runs out (score, announce, dispose). The chain is a loop with a hard
// bound, not recursion. Every take consumes a card, and between two takes
// each pass moves one of the finitely many tokens into the pot until a take
// is forced, which bounds the total number of moves.
//
// Both the manager lock and g.Mu must be held.
func (m *Manager) advance(g *game.Game) error {
	if g.State() == game.StateLobby {
		if err := g.Start(); err != nil {
			return err
		}
		m.log.WithFields(logrus.Fields{"game": g.ID, "players": len(g.Players)}).Info("game started")
		m.msgr.BroadcastText(g, "Game has started!")
	}

	totalTokens := len(g.Players) * game.StartingTokens
	maxSteps := game.CardsInPlay*(totalTokens+1) + len(g.Players) + 1
	for step := 0; step < maxSteps; step++ {
		if g.State() == game.StateFinished {
			m.finish(g)
			return nil
		}
		p := g.ActivePlayer()
		if !p.IsBot() {
			m.msgr.SendGameSummary(g, p)
			m.msgr.RequestAction(g, p)
			return nil
		}
		move := g.DecideBotAction()
		card, _ := g.TopCard()
		pot := g.Pot
		resolved, err := g.MakePlayerMove(move)
		if err != nil {
			return err
		}
		m.msgr.AnnounceAction(g, p, resolved, card, pot)
	}

	// The rotation strictly consumes tokens or cards, so hitting the bound
	// means corrupted state. Abandon this game; everyone else keeps playing.
	m.log.WithField("game", g.ID).Error("advance exceeded step bound, abandoning game")
	m.removeGame(g)
	return fmt.Errorf("game %s: advance exceeded step bound: %w", g.ID, game.ErrIllegalTransition)
}

// finish scores the ended game, announces the result and disposes of it.
// Both locks must be held.
func (m *Manager) finish(g *game.Game) {
	scores := g.ComputeScores()
	winner, seat := g.Winner()
	m.log.WithFields(logrus.Fields{
		"game": g.ID, "winner": winner.Name, "seat": seat, "scores": scores,
	}).Info("game finished")
	m.msgr.AnnounceWinner(g, winner)
	m.msgr.AnnounceScores(g, scores)
	m.removeGame(g)
}

// findOpenGame returns the oldest joinable lobby, or nil. Caller holds mu.
func (m *Manager) findOpenGame() *game.Game {
	for _, g := range m.games {
		g.Mu.Lock()
		open := g.State() == game.StateLobby && len(g.Players) < game.MaxSeats
		g.Mu.Unlock()
		if open {
			return g
		}
	}
	return nil
}

// findGameByIdentity returns the game seating the identity, or nil. Caller
// holds mu.
func (m *Manager) findGameByIdentity(id string) *game.Game {
	for _, g := range m.games {
		g.Mu.Lock()
		found := g.PlayerByIdentity(id) != nil
		g.Mu.Unlock()
		if found {
			return g
		}
	}
	return nil
}

// findGameByChannel returns the game reachable at the channel, or nil.
// Caller holds mu.
func (m *Manager) findGameByChannel(channel string) *game.Game {
	for _, g := range m.games {
		g.Mu.Lock()
		found := g.PlayerByChannel(channel) != nil
		g.Mu.Unlock()
		if found {
			return g
		}
	}
	return nil
}

// removeGame drops the game from the registry. Caller holds mu.
func (m *Manager) removeGame(g *game.Game) {
	for i, cand := range m.games {
		if cand.ID == g.ID {
			m.games = append(m.games[:i], m.games[i+1:]...)
			m.log.WithField("game", g.ID).Info("game removed")
			return
		}
	}
	m.log.WithField("game", g.ID).Warn("game not found, could not remove")
}
