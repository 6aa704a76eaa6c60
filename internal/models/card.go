package models

import (
	"fmt"
	"math/rand"
	"sort"
)

// Suit is one of the four French suits.
type Suit string

const (
	SuitClubs    Suit = "clubs"
	SuitDiamonds Suit = "diamonds"
	SuitHearts   Suit = "hearts"
	SuitSpades   Suit = "spades"
)

// Suits lists all suits in a fixed order, used for deck construction and hand sorting.
var Suits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

// Card is an immutable (suit, rank) value. Rank is the numeric value of the
// card: 2..10 for pip cards, 11=J, 12=Q, 13=K, 14=A.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

const (
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14
)

// PlaceholderCard is what other players' hands are redacted to in snapshots.
var PlaceholderCard = Card{Suit: SuitSpades, Rank: 2}

// Label returns the display rank ("2".."10", "J", "Q", "K", "A").
func (c Card) Label() string {
	switch c.Rank {
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	case RankAce:
		return "A"
	default:
		return fmt.Sprintf("%d", c.Rank)
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Label(), c.Suit)
}

// NewDeck returns all 52 (suit, rank) combinations exactly once.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := 2; r <= RankAce; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle returns a uniformly random permutation of deck. The input slice is
// not mutated.
func Shuffle(deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// SortHand orders cards by suit (clubs, diamonds, hearts, spades) then rank ascending.
func SortHand(hand []Card) {
	suitOrder := map[Suit]int{SuitClubs: 0, SuitDiamonds: 1, SuitHearts: 2, SuitSpades: 3}
	sort.Slice(hand, func(i, j int) bool {
		if hand[i].Suit != hand[j].Suit {
			return suitOrder[hand[i].Suit] < suitOrder[hand[j].Suit]
		}
		return hand[i].Rank < hand[j].Rank
	})
}
