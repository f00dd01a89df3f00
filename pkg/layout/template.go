package layout

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTemplate = errors.New("unknown resume template")

// Template selects one of the layout variants. The variants share their
// structure and differ only in Style.
type Template int

const (
	Basic Template = iota
	Modern
)

// Templates lists every variant in display order.
func Templates() []Template { return []Template{Basic, Modern} }

func (t Template) String() string {
	switch t {
	case Basic:
		return "Basic"
	case Modern:
		return "Modern"
	default:
		return fmt.Sprintf("Template(%d)", int(t))
	}
}

// Slug is the name used in URLs and output file names.
func (t Template) Slug() string { return strings.ToLower(t.String()) }

// ParseTemplate accepts a display name, a slug or the legacy
// "template_<slug>" form.
func ParseTemplate(name string) (Template, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "template_")
	for _, t := range Templates() {
		if n == t.Slug() {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
}

// Style holds the cosmetic parameters of a variant. Sizes and spaces are in
// points.
type Style struct {
	NameSize     float64
	HeadingSize  float64
	EntrySize    float64
	BodySize     float64
	BorderColor  string
	HeaderSpace  float64
	HeadingSpace float64
	EntrySpace   float64
	ListSpace    float64
}

func (t Template) Style() Style {
	switch t {
	case Modern:
		return Style{
			NameSize:     18,
			HeadingSize:  15,
			EntrySize:    12,
			BodySize:     10.5,
			BorderColor:  "blue",
			HeaderSpace:  18,
			HeadingSpace: 12,
			EntrySpace:   12,
			ListSpace:    18,
		}
	default:
		return Style{
			NameSize:     16,
			HeadingSize:  14,
			EntrySize:    12,
			BodySize:     10,
			BorderColor:  "black",
			HeaderSpace:  12,
			HeadingSpace: 0,
			EntrySpace:   6,
			ListSpace:    12,
		}
	}
}
