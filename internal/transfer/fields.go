package transfer

import (
	"strings"
)

// FieldMapping pairs input fields with output fields by position.
type FieldMapping struct {
	Input  []string
	Output []string
}

// Len returns the number of input fields.
func (m FieldMapping) Len() int {
	return len(m.Input)
}

// ParseFieldList splits a comma separated field list. Blank entries are dropped,
// so a single field name yields a one-element list.
func ParseFieldList(s string) []string {
	var fields []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

// ParseFieldMapping parses entries of the form "in:out" or "name". A bare name
// maps the field onto itself.
// Example: ["SUM_Pop:Pop", "Area"] -> Input [SUM_Pop Area], Output [Pop Area]
func ParseFieldMapping(entries []string) FieldMapping {
	var m FieldMapping
	for _, entry := range entries {
		for _, pair := range ParseFieldList(entry) {
			in, out, found := strings.Cut(pair, ":")
			in = strings.TrimSpace(in)
			out = strings.TrimSpace(out)
			if !found || out == "" {
				out = in
			}
			m.Input = append(m.Input, in)
			m.Output = append(m.Output, out)
		}
	}
	return m
}
