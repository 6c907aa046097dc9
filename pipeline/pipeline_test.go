package pipeline

import (
	"sync"
	"testing"

	"github.com/matrix-org/postguard/automata"
	"github.com/matrix-org/postguard/classification"
	"github.com/matrix-org/postguard/enhance"
	"github.com/matrix-org/postguard/lexicon"
	"github.com/matrix-org/postguard/test"
	"github.com/matrix-org/postguard/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePipeline(t *testing.T, enhancer enhance.Enhancer) *Pipeline {
	p := New(tokenizer.New(test.MustMakeLexicon(t)), enhancer)
	require.NotNil(t, p)
	return p
}

func TestRunSafeText(t *testing.T) {
	p := makePipeline(t, enhance.NewDefault(nil))

	res := p.Run("Hello everyone! Have a great day")
	assert.Equal(t, "Hello everyone! Have a great day", res.Text)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Enhancements)
	assert.Equal(t, classification.Safe, res.Trace.SpamLabel)
	assert.Equal(t, classification.Safe, res.Trace.ContentLabel)
	assert.Empty(t, res.Trace.Triggered)
	assert.False(t, res.Trace.IsFlagged())
	assert.Equal(t, "Hello everyone! Have a great day", res.Trace.MaskedText)
	assert.Equal(t, automata.Generic, res.Trace.Direction)
}

func TestRunEmptyText(t *testing.T) {
	p := makePipeline(t, nil)

	res := p.Run("")
	assert.Equal(t, "", res.Text)
	assert.NotNil(t, res.Warnings)
	assert.Empty(t, res.Warnings)
	assert.NotNil(t, res.Enhancements)
	assert.Empty(t, res.Trace.Tokens)
	assert.Equal(t, classification.Safe, res.Trace.SpamLabel)
	assert.Equal(t, classification.Safe, res.Trace.ContentLabel)
	assert.Equal(t, automata.Unstarted, res.Trace.Direction)
}

func TestRunHateSpeech(t *testing.T) {
	p := makePipeline(t, nil)

	res := p.Run("You are a stupid person")
	assert.Equal(t, classification.Hate, res.Trace.ContentLabel)
	assert.Equal(t, classification.Safe, res.Trace.SpamLabel)
	assert.Equal(t, []classification.Label{classification.Hate}, res.Trace.Triggered)
	assert.Equal(t, "You are a ****** person", res.Text)
	assert.Contains(t, res.Text, "******")
	assert.Equal(t, []string{"this post may contain hate speech"}, res.Warnings)
	assert.Equal(t, []string{"stupid"}, res.Trace.MaskedWords)
	assert.Equal(t, "B", res.Trace.ContentState)
	assert.Equal(t, automata.Other, res.Trace.Direction)
}

func TestRunThreat(t *testing.T) {
	p := makePipeline(t, nil)

	res := p.Run("I will kill him")
	assert.Equal(t, classification.Threats, res.Trace.ContentLabel)
	assert.Equal(t, "I will **** him", res.Text)
	assert.Equal(t, []string{"this post may contain threats"}, res.Warnings)
	assert.Equal(t, automata.Other, res.Trace.Direction)
}

func TestRunLinkSpam(t *testing.T) {
	p := makePipeline(t, nil)

	text := "http://a.com http://b.com http://c.com http://d.com"
	res := p.Run(text)
	assert.Equal(t, classification.Spam, res.Trace.SpamLabel)
	assert.Equal(t, classification.Safe, res.Trace.ContentLabel)
	assert.Equal(t, []classification.Label{classification.Spam}, res.Trace.Triggered)
	assert.Equal(t, []string{"this post may contain spam"}, res.Warnings)
	assert.Equal(t, text, res.Text) // nothing to mask
	assert.Equal(t, "Spam", res.Trace.SpamState)
	assert.Equal(t, []lexicon.Category{lexicon.URL, lexicon.URL, lexicon.URL, lexicon.URL}, tokenizer.Categories(res.Trace.Tokens))
}

func TestRunHashtagsAreNotSpam(t *testing.T) {
	p := makePipeline(t, enhance.NewDefault(nil))

	res := p.Run("#fun #coding #python")
	assert.Equal(t, classification.Safe, res.Trace.SpamLabel)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "H3", res.Trace.SpamState)
	assert.Equal(t, "<span class='hashtag'>#fun</span> <span class='hashtag'>#coding</span> <span class='hashtag'>#python</span>", res.Text)
	assert.Equal(t, []string{enhance.EnhancementHashtag}, res.Enhancements)
}

func TestRunBothAxes(t *testing.T) {
	p := makePipeline(t, nil)

	res := p.Run("Click here you idiot")
	assert.Equal(t, []classification.Label{classification.Spam, classification.Hate}, res.Trace.Triggered)
	assert.Equal(t, []string{
		"this post may contain spam",
		"this post may contain hate speech",
	}, res.Warnings)
	assert.Equal(t, "Click here you *****", res.Text)
	assert.True(t, res.Trace.IsFlagged())
}

func TestRunEnhancesMaskedText(t *testing.T) {
	p := makePipeline(t, enhance.NewDefault(nil))

	res := p.Run("@bob you are a *stupid* jerk :)")
	assert.Equal(t, classification.Hate, res.Trace.ContentLabel)
	assert.Equal(t, "@bob you are a ******** **** :)", res.Trace.MaskedText)
	assert.Equal(t, "<span class='mention'>@bob</span> you are a ******** **** 😊", res.Text)
	assert.Equal(t, []string{"Emoji ':)' → '😊'", enhance.EnhancementMention}, res.Enhancements)
	assert.Equal(t, res.Text, res.Trace.DisplayText)
	assert.Equal(t, res.Enhancements, res.Trace.Enhancements)
}

func TestRunDoesNotCarryState(t *testing.T) {
	p := makePipeline(t, nil)

	assert.NotEmpty(t, p.Run("buy now, I will kill him").Warnings)
	res := p.Run("Have a nice day")
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "Start", res.Trace.SpamState)
	assert.Equal(t, "Start", res.Trace.ContentState)
}

func TestPipelinesShareTokenizer(t *testing.T) {
	tok := tokenizer.New(test.MustMakeLexicon(t))
	texts := map[string]classification.Label{
		"You are a stupid person":          classification.Hate,
		"I will kill him":                  classification.Threats,
		"He watched porn last night":       classification.Harass,
		"They should die for this crime":   classification.Violence,
		"Hello everyone! Have a great day": classification.Safe,
	}

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := New(tok, nil)
			for j := 0; j < 20; j++ {
				for text, expected := range texts {
					assert.Equal(t, expected, p.Run(text).Trace.ContentLabel, text)
				}
			}
		}()
	}
	wg.Wait()
}
