package game

// Suit identifies one 13-card suit of the deck.
type Suit string

const (
	Spades   Suit = "S"
	Clubs    Suit = "C"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Carls    Suit = "A"
	Hearts2  Suit = "I"
)

const (
	MinValue      = 2
	MaxValue      = 14
	AceValue      = 14
	ValuesPerSuit = MaxValue - MinValue + 1
	SipsPerBeer   = 14
	MinPlayers    = 1
	MaxPlayers    = 6
)

// Suits lists every suit in deck order. A game with n players plays the first n.
var Suits = []Suit{Spades, Clubs, Hearts, Diamonds, Carls, Hearts2}

var suitNames = map[Suit]string{
	Spades:   "Spades",
	Clubs:    "Clubs",
	Hearts:   "Hearts",
	Diamonds: "Diamonds",
	Carls:    "Carls",
	Hearts2:  "Hearts2",
}

// FaceCardValues are Jack, Queen and King.
var FaceCardValues = []int{11, 12, 13}

func (s Suit) Name() string {
	return suitNames[s]
}

// ValidSuit reports whether s is one of the known suit codes.
func ValidSuit(s string) bool {
	_, ok := suitNames[Suit(s)]
	return ok
}

func ValidValue(v int) bool {
	return v >= MinValue && v <= MaxValue
}

func IsAce(v int) bool {
	return v == AceValue
}

func IsFaceCard(v int) bool {
	for _, f := range FaceCardValues {
		if v == f {
			return true
		}
	}
	return false
}

// DeckSize is the number of cards in a game with the given number of players.
func DeckSize(players int) int {
	return players * ValuesPerSuit
}

// SuitsFor returns the suits in play for the given number of players.
func SuitsFor(players int) []Suit {
	if players > len(Suits) {
		players = len(Suits)
	}
	if players < 0 {
		players = 0
	}
	return Suits[:players]
}

// DrawerPosition returns the seat of the player who draws the card at index.
func DrawerPosition(index, players int) int {
	if players <= 0 {
		return 0
	}
	return index % players
}
