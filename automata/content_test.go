package automata

import (
	"testing"

	"github.com/matrix-org/postguard/classification"
	"github.com/matrix-org/postguard/lexicon"
	"github.com/matrix-org/postguard/test"
	"github.com/matrix-org/postguard/tokenizer"
	"github.com/stretchr/testify/assert"
)

func TestNextContentExhaustive(t *testing.T) {
	// Every transition which leaves the current state. Everything else must self-loop.
	moves := map[ContentState]map[lexicon.Category]ContentState{
		ContentStart: {
			lexicon.Badword:  ContentBadword,
			lexicon.Politic:  ContentPolitic,
			lexicon.Sexword:  ContentSexword,
			lexicon.Violence: ContentViolence,
		},
		ContentBadword: {
			lexicon.Politic: ContentPoliticBadword,
		},
		ContentPolitic: {
			lexicon.Badword:  ContentPoliticBadword,
			lexicon.Violence: ContentPoliticViolence,
		},
		ContentViolence: {
			lexicon.Politic: ContentPoliticViolence,
		},
	}

	for _, state := range AllContentStates {
		for _, category := range lexicon.AllCategories {
			expected := state
			if next, ok := moves[state][category]; ok {
				expected = next
			}
			assert.Equal(t, expected, NextContent(state, category), "%s + %s", state, category)
		}
	}
}

func TestCombineTable(t *testing.T) {
	table := map[ContentState][3]classification.Label{ // self, generic, other
		ContentStart:           {classification.Safe, classification.Safe, classification.Safe},
		ContentBadword:         {classification.Offensive, classification.Offensive, classification.Hate},
		ContentPolitic:         {classification.Safe, classification.Safe, classification.Safe},
		ContentPoliticBadword:  {classification.Offensive, classification.Offensive, classification.Hate},
		ContentSexword:         {classification.Sex, classification.Sex, classification.Harass},
		ContentViolence:        {classification.SelfHarm, classification.Violence, classification.Threats},
		ContentPoliticViolence: {classification.Violence, classification.Hate, classification.Hate},
	}
	assert.Len(t, table, len(AllContentStates))

	for state, labels := range table {
		assert.Equal(t, labels[0], Combine(state, Self), "%s/Self", state)
		assert.Equal(t, labels[1], Combine(state, Generic), "%s/Generic", state)
		assert.Equal(t, labels[2], Combine(state, Other), "%s/Other", state)
		assert.Equal(t, labels[1], Combine(state, Unstarted), "%s/Start", state)
	}

	assert.Equal(t, classification.Safe, Combine(ContentState(42), Other))
}

func TestContentDFATokens(t *testing.T) {
	cases := []struct {
		name       string
		categories []lexicon.Category
		expected   classification.Label
		state      ContentState
	}{
		{"empty", nil, classification.Safe, ContentStart},
		{"badword generic", []lexicon.Category{lexicon.Badword}, classification.Offensive, ContentBadword},
		{"repeated badword", []lexicon.Category{lexicon.Badword, lexicon.Badword, lexicon.Sexword}, classification.Offensive, ContentBadword},
		{"badword other", []lexicon.Category{lexicon.PronounOther, lexicon.Badword}, classification.Hate, ContentBadword},
		{"politic alone", []lexicon.Category{lexicon.Politic, lexicon.Politic, lexicon.PronounOther}, classification.Safe, ContentPolitic},
		{"politic then badword", []lexicon.Category{lexicon.Politic, lexicon.Badword, lexicon.PronounOther}, classification.Hate, ContentPoliticBadword},
		{"badword then politic", []lexicon.Category{lexicon.Badword, lexicon.Politic}, classification.Offensive, ContentPoliticBadword},
		{"sex is sticky", []lexicon.Category{lexicon.Sexword, lexicon.Violence, lexicon.Politic}, classification.Sex, ContentSexword},
		{"sex other", []lexicon.Category{lexicon.PronounOther, lexicon.Sexword}, classification.Harass, ContentSexword},
		{"violence self", []lexicon.Category{lexicon.PronounSelf, lexicon.Violence}, classification.SelfHarm, ContentViolence},
		{"violence other", []lexicon.Category{lexicon.PronounSelf, lexicon.Violence, lexicon.PronounOther}, classification.Threats, ContentViolence},
		{"political violence", []lexicon.Category{lexicon.Violence, lexicon.Politic}, classification.Hate, ContentPoliticViolence},
		{"political violence self", []lexicon.Category{lexicon.PronounSelf, lexicon.Politic, lexicon.Violence}, classification.Violence, ContentPoliticViolence},
		{"absorbing", []lexicon.Category{lexicon.Politic, lexicon.Violence, lexicon.Badword, lexicon.Sexword}, classification.Hate, ContentPoliticViolence},
	}

	dfa := NewContentDFA(tokenizer.New(test.MustMakeLexicon(t)))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, dfa.ProcessTokens(tokenizer.FromCategories(c.categories...)))
			assert.Equal(t, c.state, dfa.State())
		})
	}
}

func TestContentDFAText(t *testing.T) {
	dfa := NewContentDFA(tokenizer.New(test.MustMakeLexicon(t)))

	cases := []struct {
		text      string
		expected  classification.Label
		direction Direction
	}{
		{"", classification.Safe, Unstarted},
		{"Hello everyone! Have a great day", classification.Safe, Generic},
		{"You are a stupid person", classification.Hate, Other},
		{"I am so dumb", classification.Offensive, Self},
		{"This is crap", classification.Offensive, Generic},
		{"I will kill him", classification.Threats, Other},
		{"I want to die", classification.SelfHarm, Self},
		{"They should die for this crime", classification.Violence, Generic},
		{"He watched porn last night", classification.Harass, Other},
		{"Sex sells", classification.Sex, Generic},
		{"The president will speak today", classification.Safe, Generic},
		{"Those politicians are assholes", classification.Offensive, Generic},
		{"You politicians are assholes", classification.Hate, Other},
		{"Kill the president", classification.Hate, Generic},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, dfa.ProcessText(c.text), c.text)
		assert.Equal(t, c.direction, dfa.Direction(), c.text)
	}
}

func TestContentStateStrings(t *testing.T) {
	names := make([]string, 0)
	for _, s := range AllContentStates {
		names = append(names, s.String())
	}
	assert.Equal(t, []string{"Start", "B", "P", "S", "V", "PB", "PV"}, names)
	assert.Equal(t, "Unknown", ContentState(42).String())
}
