package lexicon

import "fmt"

// Category - The semantic class of a single token. Every token carries exactly one.
type Category int

const (
	Badword Category = iota
	Sexword
	Violence
	Drug
	Selfharm
	Politic
	PronounSelf
	PronounOther
	PronounGroup
	Pronoun
	AuxVerb
	Spamword
	Fakeclaim
	URL
	Hashtag
	Mention
	Emoji
	NegEmoji
	Word
)

var categoryNames = [...]string{
	Badword:      "BADWORD",
	Sexword:      "SEXWORD",
	Violence:     "VIOLENCE",
	Drug:         "DRUG",
	Selfharm:     "SELFHARM",
	Politic:      "POLITIC",
	PronounSelf:  "PRONOUN_SELF",
	PronounOther: "PRONOUN_OTHER",
	PronounGroup: "PRONOUN_GROUP",
	Pronoun:      "PRONOUN",
	AuxVerb:      "AUX_VERB",
	Spamword:     "SPAMWORD",
	Fakeclaim:    "FAKECLAIM",
	URL:          "URL",
	Hashtag:      "HASHTAG",
	Mention:      "MENTION",
	Emoji:        "EMOJI",
	NegEmoji:     "NEG_EMOJI",
	Word:         "WORD",
}

// AllCategories - Every category, in declaration order.
var AllCategories = []Category{
	Badword, Sexword, Violence, Drug, Selfharm, Politic,
	PronounSelf, PronounOther, PronounGroup, Pronoun, AuxVerb,
	Spamword, Fakeclaim, URL, Hashtag, Mention, Emoji, NegEmoji, Word,
}

// WordCategories - The categories backed by a single-word set, in the order the tokenizer tests them.
// The first set containing a word decides its category.
var WordCategories = []Category{
	Badword, Sexword, Violence, Drug, Selfharm, Politic,
	PronounSelf, PronounOther, PronounGroup, Pronoun, AuxVerb,
}

// CensoredCategories - The categories whose words are masked out of displayed text.
var CensoredCategories = []Category{Badword, Sexword, Violence}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown category '%s'", string(b))
	}
	*c = parsed
	return nil
}

// ParseCategory - Returns the category with the given upper-case name.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return Word, false
}
