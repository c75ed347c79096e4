package domain

import (
	"fmt"
	"strings"
)

// Token is the color tag a player drops into the grid.
type Token int

const (
	NoToken Token = iota
	Red
	Yellow
	Blue
	Green
	Orange
	Purple
	Cyan
	White
	Black
)

var tokenNames = map[Token]string{
	Red:    "RED",
	Yellow: "YELLOW",
	Blue:   "BLUE",
	Green:  "GREEN",
	Orange: "ORANGE",
	Purple: "PURPLE",
	Cyan:   "CYAN",
	White:  "WHITE",
	Black:  "BLACK",
}

var tokenSymbols = map[Token]rune{
	Red:    'R',
	Yellow: 'Y',
	Blue:   'B',
	Green:  'G',
	Orange: 'O',
	Purple: 'P',
	Cyan:   'C',
	White:  'W',
	Black:  'K',
}

func (t Token) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "NONE"
}

// Symbol is the single character used when drawing the grid.
func (t Token) Symbol() rune {
	if s, ok := tokenSymbols[t]; ok {
		return s
	}
	return '.'
}

func (t Token) Valid() bool {
	_, ok := tokenNames[t]
	return ok
}

// ParseToken accepts a color name in any case.
func ParseToken(name string) (Token, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for t, n := range tokenNames {
		if n == upper {
			return t, nil
		}
	}
	return NoToken, fmt.Errorf("%w: unknown token %q", ErrInvalidTokens, name)
}

// Tokens lists every color in declaration order.
func Tokens() []Token {
	return []Token{Red, Yellow, Blue, Green, Orange, Purple, Cyan, White, Black}
}

func (t Token) MarshalText() ([]byte, error) {
	if t == NoToken {
		return []byte{}, nil
	}
	return []byte(t.String()), nil
}

func (t *Token) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = NoToken
		return nil
	}
	parsed, err := ParseToken(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// GamePhase only ever moves forward: New, Ready, Playable, Over.
type GamePhase int

const (
	PhaseNew GamePhase = iota
	PhaseReady
	PhasePlayable
	PhaseOver
)

func (p GamePhase) String() string {
	switch p {
	case PhaseNew:
		return "NEW"
	case PhaseReady:
		return "READY"
	case PhasePlayable:
		return "PLAYABLE"
	case PhaseOver:
		return "OVER"
	default:
		return fmt.Sprintf("GamePhase(%d)", int(p))
	}
}

func (p GamePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *GamePhase) UnmarshalText(text []byte) error {
	for q := PhaseNew; q <= PhaseOver; q++ {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown game phase %q", text)
}

const (
	MinRows = 6
	MaxRows = 9
	MinCols = 7
	MaxCols = 9
	ToWin   = 4
)

// Player slots.
const (
	Player0 = 0
	Player1 = 1
)

// basic errors the engine reports
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidDimensions Error = "invalid dimensions"
	ErrInvalidColumn     Error = "invalid column"
	ErrOutOfBounds       Error = "position out of bounds"
	ErrInvalidPlayer     Error = "invalid player"
	ErrInvalidTokens     Error = "invalid player tokens"
	ErrWrongPhase        Error = "wrong game phase"
	ErrColumnFull        Error = "column is full"
)
