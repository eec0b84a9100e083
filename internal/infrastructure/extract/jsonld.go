package extract

import (
	"bytes"
	"encoding/json"

	"FeedDigest/internal/domain"
)

// articleBlock is one JSON-LD object describing an article. Blocks that do
// not unmarshal into this shape are skipped individually.
type articleBlock struct {
	Type           typeField       `json:"@type"`
	Headline       string          `json:"headline"`
	Name           string          `json:"name"`
	Abstract       string          `json:"abstract"`
	Description    string          `json:"description"`
	DatePublished  string          `json:"datePublished"`
	DateCreated    string          `json:"dateCreated"`
	ArticleSection string          `json:"articleSection"`
	Identifier     identifierField `json:"identifier"`
	IsPartOf       nameField       `json:"isPartOf"`
	Publisher      nameField       `json:"publisher"`
}

func (b articleBlock) isArticle() bool {
	switch b.Type.first {
	case "Article", "ScholarlyArticle", "NewsArticle":
		return true
	}
	return false
}

func (b articleBlock) title() string {
	if b.Headline != "" {
		return b.Headline
	}
	return b.Name
}

func (b articleBlock) abstract() string {
	if b.Abstract != "" {
		return b.Abstract
	}
	return b.Description
}

func (b articleBlock) datePublished() string {
	if b.DatePublished != "" {
		return b.DatePublished
	}
	return b.DateCreated
}

func (b articleBlock) journal() string {
	if b.IsPartOf.Name != "" {
		return b.IsPartOf.Name
	}
	return b.Publisher.Name
}

// typeField tolerates "@type" given as a string or a list of strings.
type typeField struct {
	first string
}

func (t *typeField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.first = s
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
		t.first = list[0]
	}
	return nil
}

// identifierKind tags the shapes an identifier field takes in the wild.
type identifierKind int

const (
	identifierAbsent identifierKind = iota
	identifierScalar
	identifierList
)

// identifierField is the tagged variant for JSON-LD identifier values:
// absent, a scalar (plain string or a single value/@id object), or a list
// of either.
type identifierField struct {
	kind   identifierKind
	scalar string
	list   []string
}

func (f *identifierField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.kind = identifierAbsent
		return nil
	}

	switch data[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil
		}
		f.kind = identifierList
		for _, raw := range raws {
			if s := scalarIdentifier(raw); s != "" {
				f.list = append(f.list, s)
			}
		}
	default:
		f.kind = identifierScalar
		f.scalar = scalarIdentifier(data)
	}
	return nil
}

// DOI scans the identifier values in order for the first DOI-shaped
// substring. Empty when the field is absent or nothing matches.
func (f identifierField) DOI() string {
	switch f.kind {
	case identifierScalar:
		return domain.GuessDOI(f.scalar)
	case identifierList:
		return domain.GuessDOI(f.list...)
	default:
		return ""
	}
}

func scalarIdentifier(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
		ID    string `json:"@id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Value != "" {
			return obj.Value
		}
		return obj.ID
	}
	return ""
}

// nameField tolerates isPartOf/publisher given as an object with a name;
// any other shape reads as absent.
type nameField struct {
	Name string
}

func (n *nameField) UnmarshalJSON(data []byte) error {
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		n.Name = obj.Name
	}
	return nil
}
