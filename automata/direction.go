package automata

import (
	"github.com/matrix-org/postguard/lexicon"
	"github.com/matrix-org/postguard/tokenizer"
)

type DirectionState int

const (
	DirectionStart DirectionState = iota
	SelfSeen
	OtherSeen
	GenericSeen
)

// AllDirectionStates - Every DirectionState, for table-driven tests and diagnostics.
var AllDirectionStates = []DirectionState{DirectionStart, SelfSeen, OtherSeen, GenericSeen}

func (s DirectionState) String() string {
	switch s {
	case DirectionStart:
		return "Start"
	case SelfSeen:
		return "SelfSeen"
	case OtherSeen:
		return "OtherSeen"
	case GenericSeen:
		return "GenericSeen"
	}
	return "Unknown"
}

// Direction - Who a text is aimed at, once all of its tokens have been seen.
type Direction string

const (
	Self    Direction = "Self"
	Other   Direction = "Other"
	Generic Direction = "Generic"

	// Unstarted - No token was seen at all. This is distinct from Generic, though the content
	// combination treats the two the same.
	Unstarted Direction = "Start"
)

// NextDirection - The directionality transition function. Self and other pronouns always overwrite the
// current state. Any other token only moves the automaton out of its start state.
func NextDirection(state DirectionState, category lexicon.Category) DirectionState {
	switch category {
	case lexicon.PronounSelf:
		return SelfSeen
	case lexicon.PronounOther:
		return OtherSeen
	}
	if state == DirectionStart {
		return GenericSeen
	}
	return state
}

// Direction - Maps the state to its end-of-input verdict.
func (s DirectionState) Direction() Direction {
	switch s {
	case SelfSeen:
		return Self
	case OtherSeen:
		return Other
	case GenericSeen:
		return Generic
	}
	return Unstarted
}

// DirectionalityDFA - Tracks who a text is aimed at. Not safe for concurrent use.
type DirectionalityDFA struct {
	state DirectionState
}

func NewDirectionalityDFA() *DirectionalityDFA {
	return &DirectionalityDFA{state: DirectionStart}
}

func (d *DirectionalityDFA) Reset() {
	d.state = DirectionStart
}

func (d *DirectionalityDFA) Transition(category lexicon.Category) {
	d.state = NextDirection(d.state, category)
}

func (d *DirectionalityDFA) State() DirectionState {
	return d.state
}

func (d *DirectionalityDFA) Direction() Direction {
	return d.state.Direction()
}

// ProcessTokens - Resets the automaton, feeds it every token, and returns the resulting direction.
func (d *DirectionalityDFA) ProcessTokens(tokens []tokenizer.Token) Direction {
	d.Reset()
	for _, tok := range tokens {
		d.Transition(tok.Category)
	}
	return d.Direction()
}
