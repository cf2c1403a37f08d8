// Package record wraps one source row and the sections parsed from it.
package record

import "mdsections/internal/sections"

// Record is one source row. Its fields are the keys of its section map and
// are read through Get.
type Record struct {
	SourceIndex int
	RawText     string

	sections sections.Map
}

// Build splits rawText into sections. It never fails; text without headings
// gives a record with no fields.
func Build(index int, rawText string) Record {
	return Record{
		SourceIndex: index,
		RawText:     rawText,
		sections:    sections.Split(rawText),
	}
}

func (r Record) Sections() sections.Map { return r.sections }

// Get returns the body of the section stored under key.
func (r Record) Get(key string) (string, bool) {
	return r.sections.Get(key)
}

// Fields lists the section keys in document order.
func (r Record) Fields() []string {
	return r.sections.Keys()
}
