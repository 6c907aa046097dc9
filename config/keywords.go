package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrMissingKeywordField = errors.New("missing required keyword field")

// KeywordDocument - The keyword configuration record. Every field is required, though a field may be an empty list.
// Pointer types are used so a missing field can be told apart from an empty one.
type KeywordDocument struct {
	Badwords      *[]string `json:"badwords"`
	Sexwords      *[]string `json:"sexwords"`
	Violence      *[]string `json:"violence"`
	Drugs         *[]string `json:"drugs"`
	Selfharm      *[]string `json:"selfharm"`
	Spamwords     *[]string `json:"spamwords"`  // phrases
	Fakeclaims    *[]string `json:"fakeclaims"` // phrases
	Politics      *[]string `json:"politics"`
	Pronouns      *[]string `json:"pronouns"`
	PronounsSelf  *[]string `json:"pronouns_self"`
	PronounsOther *[]string `json:"pronouns_other"`
	PronounsGroup *[]string `json:"pronouns_group"`
	AuxVerbs      *[]string `json:"aux_verbs"`
	Bademojis     *[]string `json:"bademojis"`
}

// Fields - Returns the document's fields keyed by their JSON name. Missing fields have a nil value.
func (d *KeywordDocument) Fields() map[string]*[]string {
	return map[string]*[]string{
		"badwords":       d.Badwords,
		"sexwords":       d.Sexwords,
		"violence":       d.Violence,
		"drugs":          d.Drugs,
		"selfharm":       d.Selfharm,
		"spamwords":      d.Spamwords,
		"fakeclaims":     d.Fakeclaims,
		"politics":       d.Politics,
		"pronouns":       d.Pronouns,
		"pronouns_self":  d.PronounsSelf,
		"pronouns_other": d.PronounsOther,
		"pronouns_group": d.PronounsGroup,
		"aux_verbs":      d.AuxVerbs,
		"bademojis":      d.Bademojis,
	}
}

// SetField - Sets a field by its JSON name. Returns an error if the name is not a known field.
func (d *KeywordDocument) SetField(name string, entries []string) error {
	switch name {
	case "badwords":
		d.Badwords = &entries
	case "sexwords":
		d.Sexwords = &entries
	case "violence":
		d.Violence = &entries
	case "drugs":
		d.Drugs = &entries
	case "selfharm":
		d.Selfharm = &entries
	case "spamwords":
		d.Spamwords = &entries
	case "fakeclaims":
		d.Fakeclaims = &entries
	case "politics":
		d.Politics = &entries
	case "pronouns":
		d.Pronouns = &entries
	case "pronouns_self":
		d.PronounsSelf = &entries
	case "pronouns_other":
		d.PronounsOther = &entries
	case "pronouns_group":
		d.PronounsGroup = &entries
	case "aux_verbs":
		d.AuxVerbs = &entries
	case "bademojis":
		d.Bademojis = &entries
	default:
		return fmt.Errorf("unknown keyword field '%s'", name)
	}
	return nil
}

// Validate - Returns an ErrMissingKeywordField for every absent field, joined together.
func (d *KeywordDocument) Validate() error {
	errs := make([]error, 0)
	for _, name := range KeywordFieldNames {
		if d.Fields()[name] == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingKeywordField, name))
		}
	}
	return errors.Join(errs...)
}

// KeywordFieldNames - The JSON names of every KeywordDocument field, in a stable order.
var KeywordFieldNames = []string{
	"badwords",
	"sexwords",
	"violence",
	"drugs",
	"selfharm",
	"spamwords",
	"fakeclaims",
	"politics",
	"pronouns",
	"pronouns_self",
	"pronouns_other",
	"pronouns_group",
	"aux_verbs",
	"bademojis",
}

// ParseKeywordDocument - Parses and validates a keyword document from JSON.
func ParseKeywordDocument(b []byte) (*KeywordDocument, error) {
	doc := &KeywordDocument{}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, errors.Join(errors.New("malformed keyword document"), err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadKeywordFile - Reads, parses, and validates the keyword document at the given path.
func LoadKeywordFile(path string) (*KeywordDocument, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}
	return ParseKeywordDocument(b)
}
