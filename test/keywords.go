package test

import (
	"testing"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/lexicon"
	"github.com/stretchr/testify/require"
)

// KeywordDocument - Returns a complete keyword document covering the words used throughout the tests.
// Every call returns a fresh copy, so callers may modify it.
func KeywordDocument() *config.KeywordDocument {
	doc := &config.KeywordDocument{}
	for name, entries := range map[string][]string{
		"badwords":       {"stupid", "idiot", "dumb", "moron", "asshole", "assholes", "jerk", "bastard", "crap"},
		"sexwords":       {"porn", "sex", "sexy", "boobs", "nude"},
		"violence":       {"kill", "killed", "shoot", "die", "hurt", "hurting", "attack", "murder"},
		"drugs":          {"cocaine", "weed"},
		"selfharm":       {"suicide", "cutting"},
		"spamwords":      {"click here", "buy now", "limited time offer", "free money", "get rich quick"},
		"fakeclaims":     {"miracle cure", "100% proven", "guaranteed", "unbelievable secret formula", "secret formula"},
		"politics":       {"politics", "politician", "politicians", "president", "government", "election"},
		"pronouns":       {"it", "this", "that", "someone", "everyone", "nobody"},
		"pronouns_self":  {"i", "me", "my", "myself"},
		"pronouns_other": {"you", "your", "yourself", "he", "him", "his", "she", "her"},
		"pronouns_group": {"we", "us", "our", "they", "them", "those"},
		"aux_verbs":      {"am", "is", "are", "was", "were", "will", "should", "can", "have", "has"},
		"bademojis":      {"💀", "🖕", "🔪"},
	} {
		if err := doc.SetField(name, entries); err != nil {
			panic(err)
		}
	}
	return doc
}

// MustMakeLexicon - Builds a lexicon from KeywordDocument, failing the test if that is not possible.
func MustMakeLexicon(t *testing.T) *lexicon.Lexicon {
	lex, err := lexicon.New(KeywordDocument())
	require.NoError(t, err)
	require.NotNil(t, lex)
	return lex
}
