// internal/session/manager_test.go
package session

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nothxbot/nothx/internal/game"
)

// recorder collects messenger notifications instead of delivering them.
type recorder struct {
	mu        sync.Mutex
	texts     []string            // broadcast texts
	private   map[string][]string // channel -> private texts
	actions   []string            // "name:move" per announced action
	prompts   []string            // names of prompted seats
	summaries []string            // names of seats sent a summary
	winners   []string
	scores    int // AnnounceScores call count
}

func newRecorder() *recorder {
	return &recorder{private: make(map[string][]string)}
}

func (r *recorder) SendText(channel, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.private[channel] = append(r.private[channel], text)
}

func (r *recorder) BroadcastText(_ *game.Game, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recorder) AnnounceLobby(g *game.Game) {
	r.BroadcastText(g, "lobby")
}

func (r *recorder) AnnounceAction(_ *game.Game, seat *game.Player, move game.Move, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, fmt.Sprintf("%s:%s", seat.Name, move))
}

func (r *recorder) SendGameSummary(_ *game.Game, to *game.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, to.Name)
}

func (r *recorder) RequestAction(_ *game.Game, to *game.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, to.Name)
}

func (r *recorder) AnnounceScores(*game.Game, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores++
}

func (r *recorder) AnnounceWinner(_ *game.Game, winner *game.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = append(r.winners, winner.Name)
}

func (r *recorder) lastPrompt() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.prompts) == 0 {
		return ""
	}
	return r.prompts[len(r.prompts)-1]
}

func newTestManager(t *testing.T) (*Manager, *recorder) {
	t.Helper()
	rec := newRecorder()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewManager(rec, logger), rec
}

// join seats player i under predictable identity/channel/name.
func join(t *testing.T, m *Manager, i int) (identity, channel string) {
	t.Helper()
	identity = fmt.Sprintf("id-%d", i)
	channel = fmt.Sprintf("chan-%d", i)
	require.NoError(t, m.HandleJoin(identity, channel, fmt.Sprintf("player%d", i)))
	return identity, channel
}

func TestJoinReusesOpenLobby(t *testing.T) {
	m, _ := newTestManager(t)
	join(t, m, 0)
	assert.Equal(t, 1, m.NumGames())
	join(t, m, 1)
	assert.Equal(t, 1, m.NumGames(), "second join must reuse the open lobby")
}

func TestJoinCreatesNewGameWhenLobbyFull(t *testing.T) {
	m, _ := newTestManager(t)
	for i := 0; i < game.MaxSeats; i++ {
		join(t, m, i)
	}
	assert.Equal(t, 1, m.NumGames())
	join(t, m, game.MaxSeats)
	assert.Equal(t, 2, m.NumGames(), "a full lobby must not absorb an eighth seat")
}

func TestJoinWhileSeatedRejected(t *testing.T) {
	m, _ := newTestManager(t)
	id, ch := join(t, m, 0)
	err := m.HandleJoin(id, ch, "again")
	assert.ErrorIs(t, err, game.ErrIllegalTransition)
	assert.Equal(t, 1, m.NumGames())
}

func TestLeaveLobbyRemovesSeatAndEmptyGame(t *testing.T) {
	m, _ := newTestManager(t)
	id0, _ := join(t, m, 0)
	join(t, m, 1)

	require.NoError(t, m.HandleLeave(id0))
	assert.Equal(t, 1, m.NumGames(), "game lives while a human remains")

	require.NoError(t, m.HandleLeave("id-1"))
	assert.Equal(t, 0, m.NumGames(), "last human leaving cancels the game")
}

func TestLeaveWhenNotSeated(t *testing.T) {
	m, _ := newTestManager(t)
	assert.ErrorIs(t, m.HandleLeave("ghost"), game.ErrNotFound)
}

func TestStartNeedsEnoughSeats(t *testing.T) {
	m, rec := newTestManager(t)
	_, ch := join(t, m, 0)

	assert.ErrorIs(t, m.HandleStart(ch), game.ErrIllegalTransition)

	require.NoError(t, m.HandleAddBot(ch))
	require.NoError(t, m.HandleAddBot(ch))
	require.NoError(t, m.HandleStart(ch))

	assert.Contains(t, rec.texts, "Game has started!")
	// seat 0 is the human, so the first decision is theirs
	assert.Equal(t, "player0", rec.lastPrompt())
	assert.Contains(t, rec.summaries, "player0")
}

func TestStartByOutsiderRejected(t *testing.T) {
	m, _ := newTestManager(t)
	assert.ErrorIs(t, m.HandleStart("nowhere"), game.ErrNotFound)
}

func TestAddAndRemoveBots(t *testing.T) {
	m, _ := newTestManager(t)
	_, ch := join(t, m, 0)

	require.NoError(t, m.HandleAddBot(ch))
	require.NoError(t, m.HandleRemoveBot(ch))
	assert.ErrorIs(t, m.HandleRemoveBot(ch), game.ErrNotFound, "no bot left to remove")
	assert.ErrorIs(t, m.HandleAddBot("nowhere"), game.ErrNotFound)
}

func TestMoveValidation(t *testing.T) {
	m, _ := newTestManager(t)
	id0, ch0 := join(t, m, 0)
	id1, _ := join(t, m, 1)
	join(t, m, 2)

	assert.ErrorIs(t, m.HandleMove(id0, game.MovePass), game.ErrIllegalTransition,
		"no moves before start")

	require.NoError(t, m.HandleStart(ch0))
	assert.ErrorIs(t, m.HandleMove(id1, game.MovePass), game.ErrOutOfTurn,
		"only the active seat may move")
	assert.ErrorIs(t, m.HandleMove("ghost", game.MovePass), game.ErrNotFound)
}

func TestHumanMovePromptsNextSeat(t *testing.T) {
	m, rec := newTestManager(t)
	id0, ch0 := join(t, m, 0)
	join(t, m, 1)
	join(t, m, 2)
	require.NoError(t, m.HandleStart(ch0))
	require.Equal(t, "player0", rec.lastPrompt())

	require.NoError(t, m.HandleMove(id0, game.MovePass))
	assert.Contains(t, rec.actions, "player0:PASS")
	assert.Equal(t, "player1", rec.lastPrompt())
}

func TestLeaveMidMatchConvertsSeatAndPlayContinues(t *testing.T) {
	m, rec := newTestManager(t)
	id0, ch0 := join(t, m, 0)
	join(t, m, 1)
	require.NoError(t, m.HandleAddBot(ch0))
	require.NoError(t, m.HandleStart(ch0))
	require.Equal(t, "player0", rec.lastPrompt())

	// the active human leaves; the seat becomes a bot, decides on its own,
	// and play chains through Bot001 to the remaining human
	require.NoError(t, m.HandleLeave(id0))
	assert.Equal(t, 1, m.NumGames(), "game continues with a human left")
	assert.Equal(t, "player1", rec.lastPrompt())
	assert.NotEmpty(t, rec.actions, "the converted seat resolved its pending turn")
	assert.Equal(t, "player0Bot:", rec.actions[0][:len("player0Bot:")])
}

func TestLeaveMidMatchLastHumanCancelsGame(t *testing.T) {
	m, rec := newTestManager(t)
	id0, ch0 := join(t, m, 0)
	require.NoError(t, m.HandleAddBot(ch0))
	require.NoError(t, m.HandleAddBot(ch0))
	require.NoError(t, m.HandleStart(ch0))

	require.NoError(t, m.HandleLeave(id0))
	assert.Equal(t, 0, m.NumGames(), "cancellation beats auto-advance")
	assert.Empty(t, rec.winners, "a cancelled game is not scored")
}

func TestScoresQuery(t *testing.T) {
	m, rec := newTestManager(t)
	_, ch := join(t, m, 0)
	require.NoError(t, m.HandleScores(ch))
	assert.Equal(t, 1, rec.scores)
	assert.ErrorIs(t, m.HandleScores("nowhere"), game.ErrNotFound)
}

func TestBotMatchRunsToCompletion(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		m, rec := newTestManager(t)
		rng := rand.New(rand.NewSource(seed))

		require.NoError(t, m.RunBotMatch(3, rng))
		assert.Equal(t, 0, m.NumGames(), "finished game is disposed")
		require.Len(t, rec.winners, 1)
		assert.Equal(t, 1, rec.scores)
		assert.NotEmpty(t, rec.actions)
		assert.Empty(t, rec.prompts, "no human should ever be prompted")
	}
}

func TestBotMatchNeedsEnoughSeats(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.RunBotMatch(2, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, game.ErrIllegalTransition)
}
