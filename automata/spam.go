package automata

import (
	"github.com/matrix-org/postguard/classification"
	"github.com/matrix-org/postguard/lexicon"
	"github.com/matrix-org/postguard/tokenizer"
)

type SpamState int

const (
	SpamStart SpamState = iota
	URL1
	URL2
	URL3
	Hashtag1
	Hashtag2
	Hashtag3
	SpamDetected // absorbing
)

// AllSpamStates - Every SpamState, for table-driven tests and diagnostics.
var AllSpamStates = []SpamState{SpamStart, URL1, URL2, URL3, Hashtag1, Hashtag2, Hashtag3, SpamDetected}

func (s SpamState) String() string {
	switch s {
	case SpamStart:
		return "Start"
	case URL1:
		return "U1"
	case URL2:
		return "U2"
	case URL3:
		return "U3"
	case Hashtag1:
		return "H1"
	case Hashtag2:
		return "H2"
	case Hashtag3:
		return "H3"
	case SpamDetected:
		return "Spam"
	}
	return "Unknown"
}

// NextSpam - The spam transition function. Spam and fake-claim phrases go straight to SpamDetected. Otherwise
// the first URL or hashtag picks which counter is active, and only that category advances it afterwards:
// "#a http://b http://c http://d http://e" is not spam. A fourth URL (or hashtag) on the active counter is spam.
func NextSpam(state SpamState, category lexicon.Category) SpamState {
	if state == SpamDetected {
		return SpamDetected
	}
	if category == lexicon.Spamword || category == lexicon.Fakeclaim {
		return SpamDetected
	}

	switch state {
	case SpamStart:
		switch category {
		case lexicon.URL:
			return URL1
		case lexicon.Hashtag:
			return Hashtag1
		}
	case URL1:
		if category == lexicon.URL {
			return URL2
		}
	case URL2:
		if category == lexicon.URL {
			return URL3
		}
	case URL3:
		if category == lexicon.URL {
			return SpamDetected
		}
	case Hashtag1:
		if category == lexicon.Hashtag {
			return Hashtag2
		}
	case Hashtag2:
		if category == lexicon.Hashtag {
			return Hashtag3
		}
	case Hashtag3:
		if category == lexicon.Hashtag {
			return SpamDetected
		}
	}
	return state
}

// SpamDFA - Detects spam phrases and link or hashtag flooding. Not safe for concurrent use.
type SpamDFA struct {
	tokenizer *tokenizer.Tokenizer
	state     SpamState
}

func NewSpamDFA(tok *tokenizer.Tokenizer) *SpamDFA {
	return &SpamDFA{
		tokenizer: tok,
		state:     SpamStart,
	}
}

func (d *SpamDFA) Reset() {
	d.state = SpamStart
}

func (d *SpamDFA) Transition(category lexicon.Category) {
	d.state = NextSpam(d.state, category)
}

func (d *SpamDFA) State() SpamState {
	return d.state
}

func (d *SpamDFA) Label() classification.Label {
	if d.state == SpamDetected {
		return classification.Spam
	}
	return classification.Safe
}

// ProcessTokens - Resets the automaton, feeds it every token, and returns Spam or Safe.
func (d *SpamDFA) ProcessTokens(tokens []tokenizer.Token) classification.Label {
	d.Reset()
	for _, tok := range tokens {
		d.Transition(tok.Category)
	}
	return d.Label()
}

// ProcessText - Tokenizes the text and runs ProcessTokens over it.
func (d *SpamDFA) ProcessText(text string) classification.Label {
	return d.ProcessTokens(d.tokenizer.Tokenize(text))
}
