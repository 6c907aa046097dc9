package lexicon

import (
	"slices"
	"strings"
	"unicode/utf8"

	goSet "github.com/deckarep/golang-set"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/internal"
)

const variationSelector = '\uFE0F'

// Phrase - A multi-word (or single-word) spam or fake-claim phrase.
type Phrase struct {
	Text     string
	Category Category // Spamword or Fakeclaim
}

// Lexicon - The read-only keyword tables. Built once by New and then shared between every tokenizer,
// automaton, and transducer. Nothing mutates a Lexicon after construction.
type Lexicon struct {
	words     map[Category]goSet.Set
	censored  goSet.Set
	badEmojis goSet.Set
	phrases   []Phrase
}

// New - Builds a Lexicon from a keyword document. The document must have every field present (see
// config.KeywordDocument.Validate). Entries are lower-cased and trimmed, and blank entries are dropped.
func New(doc *config.KeywordDocument) (*Lexicon, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	l := &Lexicon{
		words: map[Category]goSet.Set{
			Badword:      toSet(internal.Dereference(doc.Badwords)),
			Sexword:      toSet(internal.Dereference(doc.Sexwords)),
			Violence:     toSet(internal.Dereference(doc.Violence)),
			Drug:         toSet(internal.Dereference(doc.Drugs)),
			Selfharm:     toSet(internal.Dereference(doc.Selfharm)),
			Politic:      toSet(internal.Dereference(doc.Politics)),
			PronounSelf:  toSet(internal.Dereference(doc.PronounsSelf)),
			PronounOther: toSet(internal.Dereference(doc.PronounsOther)),
			PronounGroup: toSet(internal.Dereference(doc.PronounsGroup)),
			Pronoun:      toSet(internal.Dereference(doc.Pronouns)),
			AuxVerb:      toSet(internal.Dereference(doc.AuxVerbs)),
		},
		badEmojis: goSet.NewSet(),
	}

	l.censored = goSet.NewSet()
	for _, c := range CensoredCategories {
		l.censored = l.censored.Union(l.words[c])
	}

	for _, e := range internal.Dereference(doc.Bademojis) {
		e = strings.TrimSpace(strings.ReplaceAll(e, string(variationSelector), ""))
		if e != "" {
			l.badEmojis.Add(e)
		}
	}

	seen := goSet.NewSet()
	addPhrases := func(entries []string, category Category) {
		for _, p := range normalise(entries) {
			if seen.Contains(p) {
				continue // the first category to claim a phrase keeps it
			}
			seen.Add(p)
			l.phrases = append(l.phrases, Phrase{Text: p, Category: category})
		}
	}
	addPhrases(internal.Dereference(doc.Spamwords), Spamword)
	addPhrases(internal.Dereference(doc.Fakeclaims), Fakeclaim)

	// Longest first. Ties go to spam phrases, then alphabetical, so the order is deterministic.
	slices.SortStableFunc(l.phrases, func(a, b Phrase) int {
		la := utf8.RuneCountInString(a.Text)
		lb := utf8.RuneCountInString(b.Text)
		if la != lb {
			return lb - la
		}
		if a.Category != b.Category {
			return int(a.Category) - int(b.Category)
		}
		return strings.Compare(a.Text, b.Text)
	})

	return l, nil
}

func normalise(entries []string) []string {
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			res = append(res, e)
		}
	}
	return res
}

func toSet(entries []string) goSet.Set {
	set := goSet.NewSet()
	for _, e := range normalise(entries) {
		set.Add(e)
	}
	return set
}

// Lookup - Returns the first word category (in WordCategories order) whose set contains the word.
// The word is compared lower-cased.
func (l *Lexicon) Lookup(word string) (Category, bool) {
	if word == "" {
		return Word, false
	}
	word = strings.ToLower(word)
	for _, c := range WordCategories {
		if l.words[c].Contains(word) {
			return c, true
		}
	}
	return Word, false
}

// Contains - Returns true if the word is in the given category's word set. Categories without a word set
// never contain anything.
func (l *Lexicon) Contains(category Category, word string) bool {
	set, ok := l.words[category]
	if !ok {
		return false
	}
	return set.Contains(strings.ToLower(word))
}

// IsCensored - Returns true if the word belongs to one of the CensoredCategories.
func (l *Lexicon) IsCensored(word string) bool {
	return l.censored.Contains(strings.ToLower(word))
}

// IsBadEmoji - Returns true if the emoji (with or without a trailing variation selector) is configured as bad.
func (l *Lexicon) IsBadEmoji(emoji string) bool {
	return l.badEmojis.Contains(strings.TrimSuffix(emoji, string(variationSelector)))
}

// Phrases - Returns the spam and fake-claim phrases, longest first. The returned slice is a copy.
func (l *Lexicon) Phrases() []Phrase {
	return slices.Clone(l.phrases)
}

// Counts - Returns how many entries each category holds, keyed by category name. Used for startup logging
// and metrics.
func (l *Lexicon) Counts() map[string]int {
	counts := make(map[string]int)
	for c, set := range l.words {
		counts[c.String()] = set.Cardinality()
	}
	for _, p := range l.phrases {
		counts[p.Category.String()]++
	}
	counts[NegEmoji.String()] = l.badEmojis.Cardinality()
	return counts
}
