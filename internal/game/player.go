// internal/game/player.go
package game

import "sort"

// StartingTokens is the token count every seat begins the match with.
const StartingTokens = 11

// Human identifies a human-controlled seat: an opaque external identity plus
// an opaque channel the messenger delivers private messages to. Bot seats
// carry neither, so the pair lives behind a pointer on Player rather than as
// nullable fields.
type Human struct {
	ID      string
	Channel string
}

// Player is one seat in a game's turn order, either human or bot.
type Player struct {
	human *Human

	Name   string
	Hand   []int // sorted ascending
	Tokens int
}

// NewHumanPlayer seats a human with the given identity, delivery channel and
// display name.
func NewHumanPlayer(id, channel, name string) *Player {
	return &Player{
		human:  &Human{ID: id, Channel: channel},
		Name:   name,
		Tokens: StartingTokens,
	}
}

// NewBotPlayer seats a bot under the given synthesized name.
func NewBotPlayer(name string) *Player {
	return &Player{Name: name, Tokens: StartingTokens}
}

// IsBot reports whether the seat is bot-controlled.
func (p *Player) IsBot() bool {
	return p.human == nil
}

// Identity returns the human seat's external identity. ok is false for bots.
func (p *Player) Identity() (id string, ok bool) {
	if p.human == nil {
		return "", false
	}
	return p.human.ID, true
}

// Channel returns the human seat's delivery channel. ok is false for bots.
func (p *Player) Channel() (channel string, ok bool) {
	if p.human == nil {
		return "", false
	}
	return p.human.Channel, true
}

// ConvertToBot hands the seat over to bot control when its human leaves
// mid-match. The identity and channel are dropped and the name gains a "Bot"
// suffix. The conversion is one-way; hand and tokens stay with the seat.
func (p *Player) ConvertToBot() {
	if p.human == nil {
		return
	}
	p.human = nil
	p.Name += "Bot"
}

// TakeCard adds a card to the hand, keeping it sorted ascending.
func (p *Player) TakeCard(card int) {
	i := sort.SearchInts(p.Hand, card)
	p.Hand = append(p.Hand, 0)
	copy(p.Hand[i+1:], p.Hand[i:])
	p.Hand[i] = card
}

// HasAdjacentCard reports whether the hand holds a card directly adjacent to
// the given value, i.e. taking it would extend a run.
func (p *Player) HasAdjacentCard(card int) bool {
	for _, c := range p.Hand {
		if c == card-1 || c == card+1 {
			return true
		}
	}
	return false
}

// Score computes the seat's final score: held tokens count for it, each held
// card adds its face value, except that within a run of consecutive cards
// only the lowest card is charged. Lower is better. The hand is not
// modified.
func (p *Player) Score() int {
	score := -p.Tokens
	hand := append([]int(nil), p.Hand...)
	sort.Sort(sort.Reverse(sort.IntSlice(hand)))
	for i, c := range hand {
		if i+1 < len(hand) && c-hand[i+1] == 1 {
			// absorbed into the run below it
			continue
		}
		score += c
	}
	return score
}
