package automata

import (
	"testing"

	"github.com/matrix-org/postguard/lexicon"
	"github.com/matrix-org/postguard/test"
	"github.com/matrix-org/postguard/tokenizer"
	"github.com/stretchr/testify/assert"
)

func TestNextDirectionExhaustive(t *testing.T) {
	for _, state := range AllDirectionStates {
		for _, category := range lexicon.AllCategories {
			next := NextDirection(state, category)
			switch {
			case category == lexicon.PronounSelf:
				assert.Equal(t, SelfSeen, next, "%s + %s", state, category)
			case category == lexicon.PronounOther:
				assert.Equal(t, OtherSeen, next, "%s + %s", state, category)
			case state == DirectionStart:
				assert.Equal(t, GenericSeen, next, "%s + %s", state, category)
			default:
				assert.Equal(t, state, next, "%s + %s", state, category)
			}
		}
	}
}

func TestDirectionalityDFA(t *testing.T) {
	cases := []struct {
		name       string
		categories []lexicon.Category
		expected   Direction
	}{
		{"no tokens", nil, Unstarted},
		{"only words", []lexicon.Category{lexicon.Word, lexicon.Badword}, Generic},
		{"group pronouns are generic", []lexicon.Category{lexicon.PronounGroup, lexicon.Pronoun}, Generic},
		{"self", []lexicon.Category{lexicon.PronounSelf}, Self},
		{"other", []lexicon.Category{lexicon.Word, lexicon.PronounOther}, Other},
		{"last pronoun wins (self)", []lexicon.Category{lexicon.PronounOther, lexicon.PronounSelf}, Self},
		{"last pronoun wins (other)", []lexicon.Category{lexicon.PronounSelf, lexicon.Violence, lexicon.PronounOther}, Other},
		{"words never demote a pronoun", []lexicon.Category{lexicon.PronounSelf, lexicon.Word, lexicon.PronounGroup, lexicon.Word}, Self},
	}

	dfa := NewDirectionalityDFA()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, dfa.ProcessTokens(tokenizer.FromCategories(c.categories...)))
		})
	}
}

func TestDirectionalityDFAResetsBetweenRuns(t *testing.T) {
	dfa := NewDirectionalityDFA()
	assert.Equal(t, Self, dfa.ProcessTokens(tokenizer.FromCategories(lexicon.PronounSelf)))
	assert.Equal(t, SelfSeen, dfa.State())
	assert.Equal(t, Unstarted, dfa.ProcessTokens(nil))
	assert.Equal(t, DirectionStart, dfa.State())
}

func TestDirectionalityFromText(t *testing.T) {
	tok := tokenizer.New(test.MustMakeLexicon(t))
	dfa := NewDirectionalityDFA()

	assert.Equal(t, Self, dfa.ProcessTokens(tok.Tokenize("Nobody loves me")))
	assert.Equal(t, Other, dfa.ProcessTokens(tok.Tokenize("We are better than you")))
	assert.Equal(t, Other, dfa.ProcessTokens(tok.Tokenize("I will kill him")))
	assert.Equal(t, Generic, dfa.ProcessTokens(tok.Tokenize("Life is hard")))
	assert.Equal(t, Unstarted, dfa.ProcessTokens(tok.Tokenize("")))
}

func TestDirectionStateStrings(t *testing.T) {
	assert.Equal(t, "Start", DirectionStart.String())
	assert.Equal(t, "SelfSeen", SelfSeen.String())
	assert.Equal(t, "OtherSeen", OtherSeen.String())
	assert.Equal(t, "GenericSeen", GenericSeen.String())
	assert.Equal(t, "Unknown", DirectionState(42).String())
}
