package automata

import (
	"github.com/matrix-org/postguard/classification"
	"github.com/matrix-org/postguard/lexicon"
	"github.com/matrix-org/postguard/tokenizer"
)

type ContentState int

const (
	ContentStart ContentState = iota
	ContentBadword
	ContentPolitic
	ContentSexword
	ContentViolence
	ContentPoliticBadword  // absorbing
	ContentPoliticViolence // absorbing
)

// AllContentStates - Every ContentState, for table-driven tests and diagnostics.
var AllContentStates = []ContentState{
	ContentStart,
	ContentBadword,
	ContentPolitic,
	ContentSexword,
	ContentViolence,
	ContentPoliticBadword,
	ContentPoliticViolence,
}

func (s ContentState) String() string {
	switch s {
	case ContentStart:
		return "Start"
	case ContentBadword:
		return "B"
	case ContentPolitic:
		return "P"
	case ContentSexword:
		return "S"
	case ContentViolence:
		return "V"
	case ContentPoliticBadword:
		return "PB"
	case ContentPoliticViolence:
		return "PV"
	}
	return "Unknown"
}

// NextContent - The content transition function. Pairs not listed here keep the current state.
func NextContent(state ContentState, category lexicon.Category) ContentState {
	switch state {
	case ContentStart:
		switch category {
		case lexicon.Badword:
			return ContentBadword
		case lexicon.Politic:
			return ContentPolitic
		case lexicon.Sexword:
			return ContentSexword
		case lexicon.Violence:
			return ContentViolence
		}
	case ContentBadword:
		if category == lexicon.Politic {
			return ContentPoliticBadword
		}
	case ContentPolitic:
		switch category {
		case lexicon.Badword:
			return ContentPoliticBadword
		case lexicon.Violence:
			return ContentPoliticViolence
		}
	case ContentViolence:
		if category == lexicon.Politic {
			return ContentPoliticViolence
		}
	}
	return state
}

// row is indexed by self, generic, other
type row [3]classification.Label

var combinations = map[ContentState]row{
	ContentStart:           {classification.Safe, classification.Safe, classification.Safe},
	ContentBadword:         {classification.Offensive, classification.Offensive, classification.Hate},
	ContentPolitic:         {classification.Safe, classification.Safe, classification.Safe},
	ContentPoliticBadword:  {classification.Offensive, classification.Offensive, classification.Hate},
	ContentSexword:         {classification.Sex, classification.Sex, classification.Harass},
	ContentViolence:        {classification.SelfHarm, classification.Violence, classification.Threats},
	ContentPoliticViolence: {classification.Violence, classification.Hate, classification.Hate},
}

// Combine - Looks up the content label for a final content state and direction. Unstarted is treated
// as Generic.
func Combine(state ContentState, direction Direction) classification.Label {
	r, ok := combinations[state]
	if !ok {
		return classification.Safe
	}
	switch direction {
	case Self:
		return r[0]
	case Other:
		return r[2]
	}
	return r[1]
}

// ContentDFA - Classifies harmful content, combining its own final state with a DirectionalityDFA.
// Not safe for concurrent use.
type ContentDFA struct {
	tokenizer *tokenizer.Tokenizer
	direction *DirectionalityDFA
	state     ContentState
}

func NewContentDFA(tok *tokenizer.Tokenizer) *ContentDFA {
	return &ContentDFA{
		tokenizer: tok,
		direction: NewDirectionalityDFA(),
		state:     ContentStart,
	}
}

// Reset - Resets this automaton and its directionality automaton.
func (d *ContentDFA) Reset() {
	d.state = ContentStart
	d.direction.Reset()
}

func (d *ContentDFA) Transition(category lexicon.Category) {
	d.state = NextContent(d.state, category)
}

func (d *ContentDFA) State() ContentState {
	return d.state
}

// Direction - The direction resolved by the most recent run.
func (d *ContentDFA) Direction() Direction {
	return d.direction.Direction()
}

func (d *ContentDFA) Label() classification.Label {
	return Combine(d.state, d.direction.Direction())
}

// ProcessTokens - Resets both automata, then feeds every token to the directionality automaton followed
// by the content automaton. Returns the combined content label.
func (d *ContentDFA) ProcessTokens(tokens []tokenizer.Token) classification.Label {
	d.Reset()
	for _, tok := range tokens {
		d.direction.Transition(tok.Category)
		d.Transition(tok.Category)
	}
	return d.Label()
}

// ProcessText - Tokenizes the text and runs ProcessTokens over it.
func (d *ContentDFA) ProcessText(text string) classification.Label {
	return d.ProcessTokens(d.tokenizer.Tokenize(text))
}
