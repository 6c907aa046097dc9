package pipeline

import (
	"github.com/matrix-org/postguard/automata"
	"github.com/matrix-org/postguard/classification"
	"github.com/matrix-org/postguard/enhance"
	"github.com/matrix-org/postguard/tokenizer"
	"github.com/matrix-org/postguard/transducer"
)

// Result - What a caller shows to the user.
type Result struct {
	Text         string   `json:"text"`
	Enhancements []string `json:"enhancements"`
	Warnings     []string `json:"warnings"`

	Trace *Trace `json:"-"`
}

// Trace - Everything the pipeline worked out along the way. Used for diagnostics, never for decisions.
type Trace struct {
	Tokens           []tokenizer.Token      `json:"tokens"`
	SpamLabel        classification.Label   `json:"spam_label"`
	SpamState        string                 `json:"spam_state"`
	ContentLabel     classification.Label   `json:"content_label"`
	ContentState     string                 `json:"content_state"`
	Direction        automata.Direction     `json:"direction"`
	Triggered        []classification.Label `json:"triggered"`
	MaskedText       string                 `json:"masked_text"`
	MaskedWords      []string               `json:"masked_words"`
	ReadableWarnings []string               `json:"readable_warnings"`
	DisplayText      string                 `json:"display_text"`
	Enhancements     []string               `json:"enhancements"`
}

// IsFlagged - True if either axis produced a non-Safe label.
func (t *Trace) IsFlagged() bool {
	return len(t.Triggered) > 0
}

// Pipeline - Runs text through every automaton and transducer. A Pipeline owns its automata and so is not
// safe for concurrent use. New is cheap: create one per goroutine (or per job) over a shared Tokenizer.
type Pipeline struct {
	tokenizer *tokenizer.Tokenizer
	spam      *automata.SpamDFA
	content   *automata.ContentDFA
	censor    *transducer.CensorshipFST
	warnings  *transducer.WarningFST
	enhancer  enhance.Enhancer
}

// New - Creates a pipeline. If enhancer is nil, display text is not enhanced.
func New(tok *tokenizer.Tokenizer, enhancer enhance.Enhancer) *Pipeline {
	if enhancer == nil {
		enhancer = &enhance.None{}
	}
	return &Pipeline{
		tokenizer: tok,
		spam:      automata.NewSpamDFA(tok),
		content:   automata.NewContentDFA(tok),
		censor:    transducer.NewCensorshipFST(tok.Lexicon()),
		warnings:  transducer.NewWarningFST(),
		enhancer:  enhancer,
	}
}

// Run - Classifies the text on both axes, masks it if anything was triggered, and enhances the result.
// Classification always runs on the original text. Both automata tokenize for themselves; the tokens
// kept on the trace come from a separate pass and are never fed back.
func (p *Pipeline) Run(text string) *Result {
	tokens := p.tokenizer.Tokenize(text)

	spamLabel := p.spam.ProcessText(text)
	contentLabel := p.content.ProcessText(text)

	triggered := make([]classification.Label, 0, 2)
	if !spamLabel.IsSafe() {
		triggered = append(triggered, spamLabel)
	}
	if !contentLabel.IsSafe() {
		triggered = append(triggered, contentLabel)
	}

	masked := text
	maskedWords := make([]string, 0)
	readable := make([]string, 0)
	if len(triggered) > 0 {
		masked = p.censor.ProcessText(text)
		maskedWords = p.censor.Masked(text)
		readable = p.warnings.GenerateWarnings(triggered)
	}

	enhanced := p.enhancer.Enhance(masked)
	enhancements := enhanced.Enhancements
	if enhancements == nil {
		enhancements = make([]string, 0)
	}

	return &Result{
		Text:         enhanced.Text,
		Enhancements: enhancements,
		Warnings:     readable,
		Trace: &Trace{
			Tokens:           tokens,
			SpamLabel:        spamLabel,
			SpamState:        p.spam.State().String(),
			ContentLabel:     contentLabel,
			ContentState:     p.content.State().String(),
			Direction:        p.content.Direction(),
			Triggered:        triggered,
			MaskedText:       masked,
			MaskedWords:      maskedWords,
			ReadableWarnings: readable,
			DisplayText:      enhanced.Text,
			Enhancements:     enhancements,
		},
	}
}
