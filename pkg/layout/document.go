package layout

import (
	"fmt"

	"resume-builder/internal/model"
)

type BlockKind string

const (
	KindEntryTitle BlockKind = "entry-title"
	KindParagraph  BlockKind = "paragraph"
	KindBullets    BlockKind = "bullets"
	KindSpacer     BlockKind = "spacer"
)

// Block is one flowable element of a section.
type Block struct {
	Kind   BlockKind
	Text   string
	Items  []string
	Height float64
}

// Header is the name and contact block at the top of the document.
type Header struct {
	Name     string
	Contacts []string
}

type Section struct {
	Title  string
	Blocks []Block
}

// Document is the laid-out résumé, ready to be rendered.
type Document struct {
	Template Template
	Style    Style
	Header   Header
	Sections []Section
}

// Build lays out r with the given variant. It is a pure function of its
// inputs.
func Build(r model.Resume, t Template) Document {
	st := t.Style()
	doc := Document{Template: t, Style: st, Header: buildHeader(r)}

	if r.Employment != nil {
		sec := newSection(model.KeyEmployment, st)
		for _, job := range r.Employment {
			sec.Blocks = append(sec.Blocks,
				Block{Kind: KindEntryTitle, Text: fmt.Sprintf("%s at %s - %s", job.Title, job.Company, job.Dates)},
				Block{Kind: KindParagraph, Text: job.Description},
				spacer(st.EntrySpace),
			)
		}
		doc.Sections = append(doc.Sections, sec)
	}
	doc.appendList(model.KeyTechnicalSkills, r.TechnicalSkills)
	doc.appendList(model.KeySoftSkills, r.SoftSkills)
	if r.Education != nil {
		sec := newSection(model.KeyEducation, st)
		for _, edu := range r.Education {
			sec.Blocks = append(sec.Blocks,
				Block{Kind: KindEntryTitle, Text: fmt.Sprintf("%s - %s, %s (%s)", edu.Degree, edu.Institution, edu.Location, edu.Dates)},
				Block{Kind: KindParagraph, Text: edu.Achievements},
				spacer(st.EntrySpace),
			)
		}
		doc.Sections = append(doc.Sections, sec)
	}
	doc.appendList(model.KeyCertifications, r.Certifications)
	doc.appendList(model.KeyAwards, r.Awards)

	return doc
}

// SectionTitles returns the headings in document order.
func (d Document) SectionTitles() []string {
	out := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		out = append(out, s.Title)
	}
	return out
}

func (d *Document) appendList(title string, items []string) {
	if items == nil {
		return
	}
	sec := newSection(title, d.Style)
	if len(items) > 0 {
		sec.Blocks = append(sec.Blocks,
			Block{Kind: KindBullets, Items: append([]string(nil), items...)},
			spacer(d.Style.ListSpace),
		)
	}
	d.Sections = append(d.Sections, sec)
}

func newSection(title string, st Style) Section {
	sec := Section{Title: title}
	if st.HeadingSpace > 0 {
		sec.Blocks = append(sec.Blocks, spacer(st.HeadingSpace))
	}
	return sec
}

func spacer(h float64) Block { return Block{Kind: KindSpacer, Height: h} }

func buildHeader(r model.Resume) Header {
	h := Header{Name: r.FullName}
	add := func(label, v string) {
		if v != "" {
			h.Contacts = append(h.Contacts, label+v)
		}
	}
	add("Email: ", r.Email)
	add("Phone: ", r.Phone)
	add("GitHub: ", r.GitHub)
	add("LinkedIn: ", r.LinkedIn)
	return h
}
