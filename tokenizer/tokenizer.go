package tokenizer

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/matrix-org/postguard/lexicon"
)

// Printable ASCII punctuation, trimmed from units before word-set lookups
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var urlRegex = regexp.MustCompile(`^https?://\S`)
var hashtagRegex = regexp.MustCompile(`^#\w`)
var mentionRegex = regexp.MustCompile(`^@\w`)

type Token struct {
	Category lexicon.Category `json:"category"`
	Text     string           `json:"text"`
}

// Tokenizer - Turns text into category tokens using a Lexicon. A Tokenizer holds no per-call state and
// is safe for concurrent use.
type Tokenizer struct {
	lex     *lexicon.Lexicon
	phrases []phraseMatcher
}

type phraseMatcher struct {
	category lexicon.Category
	re       *regexp.Regexp
}

type span struct {
	start    int
	end      int
	category lexicon.Category
}

func New(lex *lexicon.Lexicon) *Tokenizer {
	phrases := lex.Phrases()
	t := &Tokenizer{
		lex:     lex,
		phrases: make([]phraseMatcher, 0, len(phrases)),
	}
	for _, p := range phrases {
		t.phrases = append(t.phrases, phraseMatcher{
			category: p.Category,
			re:       compilePhrase(p.Text),
		})
	}
	return t
}

// compilePhrase builds a case-insensitive matcher for the phrase. Word characters at either end of the
// phrase must sit on a word boundary, and the gaps between words match any run of whitespace.
func compilePhrase(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	expr := strings.Join(words, `\s+`)
	if isWordByte(phrase[0]) {
		expr = `\b` + expr
	}
	if isWordByte(phrase[len(phrase)-1]) {
		expr = expr + `\b`
	}
	return regexp.MustCompile(`(?i)` + expr)
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func (t *Tokenizer) Lexicon() *lexicon.Lexicon {
	return t.lex
}

// Tokenize - Splits the text into an ordered sequence of tokens. Empty (or all-whitespace) text produces
// an empty, non-nil, sequence.
func (t *Tokenizer) Tokenize(text string) []Token {
	tokens := make([]Token, 0)
	if strings.TrimSpace(text) == "" {
		return tokens
	}

	spaced := spaceEmoji(text)
	pos := 0
	for _, s := range t.findPhrases(spaced) {
		tokens = t.appendUnits(tokens, spaced[pos:s.start])
		tokens = append(tokens, Token{Category: s.category, Text: spaced[s.start:s.end]})
		pos = s.end
	}
	return t.appendUnits(tokens, spaced[pos:])
}

func (t *Tokenizer) appendUnits(tokens []Token, segment string) []Token {
	for _, unit := range strings.Fields(segment) {
		tokens = append(tokens, Token{Category: t.classify(unit), Text: unit})
	}
	return tokens
}

// findPhrases claims the spans of every phrase match, longest phrase first. A match overlapping an
// already claimed span is dropped. The returned spans are ordered by position.
func (t *Tokenizer) findPhrases(text string) []span {
	claimed := make([]span, 0)
	for _, p := range t.phrases {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if overlapsAny(claimed, loc[0], loc[1]) {
				continue
			}
			claimed = append(claimed, span{start: loc[0], end: loc[1], category: p.category})
		}
	}
	slices.SortFunc(claimed, func(a, b span) int {
		return a.start - b.start
	})
	return claimed
}

func overlapsAny(spans []span, start int, end int) bool {
	for _, s := range spans {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

func (t *Tokenizer) classify(unit string) lexicon.Category {
	switch {
	case urlRegex.MatchString(unit):
		return lexicon.URL
	case hashtagRegex.MatchString(unit):
		return lexicon.Hashtag
	case mentionRegex.MatchString(unit):
		return lexicon.Mention
	}

	if c, ok := t.lex.Lookup(strings.Trim(unit, asciiPunctuation)); ok {
		return c
	}

	if isSingleEmoji(unit) {
		if t.lex.IsBadEmoji(unit) {
			return lexicon.NegEmoji
		}
		return lexicon.Emoji
	}

	return lexicon.Word
}

// Categories - Returns just the categories of the tokens, in order.
func Categories(tokens []Token) []lexicon.Category {
	categories := make([]lexicon.Category, len(tokens))
	for i, tok := range tokens {
		categories[i] = tok.Category
	}
	return categories
}

// FromCategories - Makes placeholder tokens for the given categories. The token text is the category name.
func FromCategories(categories ...lexicon.Category) []Token {
	tokens := make([]Token, len(categories))
	for i, c := range categories {
		tokens[i] = Token{Category: c, Text: c.String()}
	}
	return tokens
}

func isSingleEmoji(unit string) bool {
	unit = strings.TrimSuffix(unit, string(variationSelector))
	r, size := utf8.DecodeRuneInString(unit)
	return size == len(unit) && IsEmoji(r)
}
