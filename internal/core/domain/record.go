package domain

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Record is one extracted entity or report row, held as its raw JSON
// document. Field order and value fidelity are preserved exactly as the
// remote API returned them.
type Record struct {
	raw []byte
}

// NewRecord wraps a raw JSON object as a Record.
func NewRecord(raw []byte) Record {
	return Record{raw: raw}
}

// Raw returns the underlying JSON bytes.
func (r Record) Raw() []byte {
	return r.raw
}

// JSON returns the record as a JSON string.
func (r Record) JSON() string {
	return string(r.raw)
}

// Get reads a value from the record by gjson path.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Project narrows the record to the given field paths. A nested path such as
// "budget.amount" is stored under its leaf name ("amount"). Paths missing
// from the record are skipped. An empty field list returns the record
// unchanged.
func (r Record) Project(fields []string) Record {
	if len(fields) == 0 {
		return r
	}

	out := "{}"
	for _, field := range fields {
		v := gjson.GetBytes(r.raw, field)
		if !v.Exists() {
			continue
		}

		name := field
		if i := strings.LastIndex(field, "."); i >= 0 {
			name = field[i+1:]
		}

		updated, err := sjson.SetRaw(out, name, v.Raw)
		if err != nil {
			continue
		}
		out = updated
	}

	return Record{raw: []byte(out)}
}
