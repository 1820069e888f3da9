// internal/game/deck.go
package game

import "math/rand"

const (
	// Card face values span [LowestCard, HighestCard] inclusive.
	LowestCard  = 3
	HighestCard = 34

	// removedCards is how many shuffled cards are set aside unseen each game.
	removedCards = 9

	// CardsInPlay is the number of cards actually dealt out over a match.
	CardsInPlay = HighestCard - LowestCard + 1 - removedCards
)

// Deck is an ordered, depletable sequence of card values. The top card, the
// next to be taken, sits at the end of the slice. A deck only ever shrinks;
// once it is empty the game is over.
type Deck struct {
	cards []int
}

// NewDeck shuffles the full card range with r and sets the last removedCards
// aside, leaving CardsInPlay cards for the match.
func NewDeck(r *rand.Rand) *Deck {
	cards := make([]int, 0, HighestCard-LowestCard+1)
	for v := LowestCard; v <= HighestCard; v++ {
		cards = append(cards, v)
	}
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards[:len(cards)-removedCards]}
}

// Top returns the revealed card without removing it. ok is false once the
// deck is exhausted.
func (d *Deck) Top() (card int, ok bool) {
	if len(d.cards) == 0 {
		return 0, false
	}
	return d.cards[len(d.cards)-1], true
}

// Draw removes and returns the top card. ok is false once the deck is
// exhausted.
func (d *Deck) Draw() (card int, ok bool) {
	if len(d.cards) == 0 {
		return 0, false
	}
	card = d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// Len reports how many cards remain.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Empty reports whether the deck is exhausted.
func (d *Deck) Empty() bool {
	return len(d.cards) == 0
}
