package extract

import (
	"sort"
	"strings"
)

// Field is one tagged sub-field row of a legacy bibliographic record.
type Field struct {
	Tag   string
	Sub   string
	Value string
}

// Attributes is the typed, best-effort attribute map extracted from one
// record's tagged fields. Numeric fields are nil when the source value is
// missing or unparseable; that is never an error.
type Attributes struct {
	ISBN             string
	Publisher        string
	PublicationPlace string
	PublicationYear  *int
	Language         string
	Country          string
	Pages            *int
	Price            *float64
	Dimensions       string
	Description      string
	Author           string

	// Subjects collects repeatable subject terms in source order.
	Subjects []string

	responsibility string
}

// Attribute keys accepted by the tag map and its YAML overrides.
const (
	AttrISBN             = "isbn"
	AttrPrice            = "price"
	AttrLanguage         = "language"
	AttrCountry          = "country"
	AttrAuthor           = "author"
	AttrResponsibility   = "responsibility"
	AttrPublicationPlace = "publication_place"
	AttrPublisher        = "publisher"
	AttrPublicationYear  = "publication_year"
	AttrPages            = "pages"
	AttrDimensions       = "dimensions"
	AttrDescription      = "description"
	AttrSubject          = "subject"
)

var setters = map[string]func(*Attributes, string){
	AttrISBN:             func(a *Attributes, v string) { a.ISBN = v },
	AttrLanguage:         func(a *Attributes, v string) { a.Language = v },
	AttrCountry:          func(a *Attributes, v string) { a.Country = v },
	AttrAuthor:           func(a *Attributes, v string) { a.Author = v },
	AttrResponsibility:   func(a *Attributes, v string) { a.responsibility = v },
	AttrPublicationPlace: func(a *Attributes, v string) { a.PublicationPlace = v },
	AttrPublisher:        func(a *Attributes, v string) { a.Publisher = v },
	AttrDimensions:       func(a *Attributes, v string) { a.Dimensions = v },
	AttrDescription:      func(a *Attributes, v string) { a.Description = v },
	AttrPrice:            func(a *Attributes, v string) { a.Price = LenientFloat(v) },
	AttrPages:            func(a *Attributes, v string) { a.Pages = LenientInt(v) },
	AttrPublicationYear:  func(a *Attributes, v string) { a.PublicationYear = LenientYear(v) },
	AttrSubject: func(a *Attributes, v string) {
		if v = strings.TrimSpace(v); v != "" {
			a.Subjects = append(a.Subjects, v)
		}
	},
}

// TagMap maps (tag, sub-field code) pairs to semantic attributes.
// Pairs with no entry are silently ignored.
type TagMap struct {
	fields map[string]string
}

// DefaultTagMap covers the tags the legacy cataloguing screens wrote.
func DefaultTagMap() *TagMap {
	return &TagMap{fields: map[string]string{
		"020a": AttrISBN,
		"020c": AttrPrice,
		"041a": AttrLanguage,
		"044a": AttrCountry,
		"100a": AttrAuthor,
		"245c": AttrResponsibility,
		"260a": AttrPublicationPlace,
		"260b": AttrPublisher,
		"260c": AttrPublicationYear,
		"300a": AttrPages,
		"300c": AttrDimensions,
		"520a": AttrDescription,
		"600a": AttrSubject,
		"650a": AttrSubject,
		"651a": AttrSubject,
	}}
}

// TagSub is one (tag, sub-field code) pair of the tag map.
type TagSub struct {
	Tag string
	Sub string
}

// SubjectTags returns the (tag, sub-field) pairs that feed subject
// terms, sorted, for source-side queries that mirror the extractor's
// view. The pairs carry the sub-field code because only the mapped
// sub-field holds a term; sibling sub-fields under the same tag do not.
func (m *TagMap) SubjectTags() []TagSub {
	var pairs []TagSub
	for key, attr := range m.fields {
		if attr != AttrSubject || len(key) < 2 {
			continue
		}
		pairs = append(pairs, TagSub{Tag: key[:len(key)-1], Sub: key[len(key)-1:]})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Tag != pairs[j].Tag {
			return pairs[i].Tag < pairs[j].Tag
		}
		return pairs[i].Sub < pairs[j].Sub
	})
	return pairs
}

// Extract folds one record's tagged fields into Attributes. Pure: a
// single pass over the input, no side effects, never fails. When the
// author main entry is absent the free-text responsibility statement
// stands in for it.
func (m *TagMap) Extract(fields []Field) Attributes {
	var attrs Attributes
	for _, f := range fields {
		attr, ok := m.fields[f.Tag+f.Sub]
		if !ok {
			continue
		}
		set, ok := setters[attr]
		if !ok {
			continue
		}
		set(&attrs, strings.TrimSpace(f.Value))
	}
	if attrs.Author == "" {
		attrs.Author = attrs.responsibility
	}
	return attrs
}
