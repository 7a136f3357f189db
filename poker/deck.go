package poker

import (
	"math/rand"
)

// Deck represents a standard 52-card deck, or a subset of it when built via
// NewDeckExcluding. size is the number of live cards at the front of cards;
// slots at or past size are unused.
type Deck struct {
	cards [52]Card
	size  int
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	d.size = i
	d.Shuffle()
	return d
}

// NewDeckExcluding builds a shuffled deck that omits every card present in dead,
// used by equity sampling to avoid dealing a card already held or on the board.
func NewDeckExcluding(rng *rand.Rand, dead Hand) *Deck {
	d := &Deck{rng: rng}
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			c := NewCard(rank, suit)
			if dead.HasCard(c) {
				continue
			}
			d.cards[i] = c
			i++
		}
	}
	d.size = i
	d.Shuffle()
	return d
}

// Shuffle shuffles the live portion of the deck using Fisher-Yates. The RNG is
// always the one passed to NewDeck/NewDeckExcluding so every shuffle traces
// back to an explicit, caller-controlled seed, never the global rand.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := d.size - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck
func (d *Deck) Deal(n int) []Card {
	if d.next+n > d.size {
		return nil
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards
}

// DealOne deals a single card from the deck
func (d *Deck) DealOne() Card {
	if d.next >= d.size {
		return 0
	}
	card := d.cards[d.next]
	d.next++
	return card
}

// Reset resets and reshuffles the deck
func (d *Deck) Reset() {
	d.Shuffle()
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return d.size - d.next
}
