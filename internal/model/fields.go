package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is an integer field that tolerates the loose encodings found in
// stored records: JSON numbers, numeric strings, empty strings and null.
// Anything unparseable decodes as zero.
type Count int

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		data = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*c = Count(f)
	return nil
}

// Line is one entry of an item list.
type Line struct {
	Name     string `json:"name"`
	Quantity Count  `json:"quantity"`
}

// Items holds the items field of a record. Older records store a display
// string ("Scalpel (2), Forceps (1)"); kits store a JSON-encoded array of
// lines. Both are kept verbatim as a string.
type Items string

// UnmarshalJSON accepts a string or a raw JSON array. Arrays are kept in
// their encoded form.
func (it *Items) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*it = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*it = ""
			return nil
		}
		*it = Items(s)
	default:
		*it = Items(data)
	}
	return nil
}

// EncodeLines returns the JSON-encoded form of lines.
func EncodeLines(lines []Line) Items {
	if lines == nil {
		lines = []Line{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return ""
	}
	return Items(b)
}

// RenderLines formats lines as "name (qty), name (qty)".
func RenderLines(lines []Line) Items {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s (%d)", l.Name, l.Quantity))
	}
	return Items(strings.Join(parts, ", "))
}

// Lines parses the JSON-encoded form. ok is false when the field is not a
// JSON array.
func (it Items) Lines() (lines []Line, ok bool) {
	s := strings.TrimSpace(string(it))
	if !strings.HasPrefix(s, "[") {
		return nil, false
	}
	if err := json.Unmarshal([]byte(s), &lines); err != nil {
		return nil, false
	}
	return lines, true
}

// Display renders the items for a table cell. Non-JSON values pass through.
func (it Items) Display() string {
	lines, ok := it.Lines()
	if !ok {
		return string(it)
	}
	return string(RenderLines(lines))
}

// Total sums the line quantities. It is zero when the field is not JSON.
func (it Items) Total() int {
	lines, _ := it.Lines()
	total := 0
	for _, l := range lines {
		total += int(l.Quantity)
	}
	return total
}
