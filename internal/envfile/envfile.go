package envfile

import (
	"strings"
)

// Entry is a single variable definition.
type Entry struct {
	Key   string
	Value string
	// Quote records the quoting style of the original line: '"', '\'',
	// or 0 when the value was unquoted.
	Quote byte
}

// Document is an ordered mapping of variable names to values.
type Document struct {
	entries []Entry
	index   map[string]int
}

// Parse reads .env-style text into a Document.
//
// Blank lines and full-line comments are skipped. Each remaining line is
// split on the first '='; lines without one are ignored. Keys and values are
// trimmed of surrounding whitespace, and one layer of matching single or
// double quotes is stripped from the value (the style is recorded so
// Serialize can restore it). The last occurrence of a duplicate key wins and
// keeps the position of its first occurrence.
func Parse(text string) *Document {
	doc := &Document{index: make(map[string]int)}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		eq := strings.Index(trimmed, "=")
		if eq < 0 {
			continue
		}

		key := strings.TrimSpace(trimmed[:eq])
		if key == "" {
			continue
		}
		value := strings.TrimSpace(trimmed[eq+1:])
		value, quote := unquote(value)

		if at, exists := doc.index[key]; exists {
			doc.entries[at].Value = value
			doc.entries[at].Quote = quote
			continue
		}
		doc.index[key] = len(doc.entries)
		doc.entries = append(doc.entries, Entry{Key: key, Value: value, Quote: quote})
	}

	return doc
}

// unquote strips one layer of matching single or double quotes.
func unquote(value string) (string, byte) {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return value[1 : len(value)-1], first
		}
	}
	return value, 0
}

// Entries returns the document's entries in declaration order.
func (d *Document) Entries() []Entry {
	return d.entries
}

// Get returns the value for key.
func (d *Document) Get(key string) (string, bool) {
	at, ok := d.index[key]
	if !ok {
		return "", false
	}
	return d.entries[at].Value, true
}

// Len returns the number of distinct variables.
func (d *Document) Len() int {
	return len(d.entries)
}

// Map returns the document as a plain key to value mapping.
func (d *Document) Map() map[string]string {
	m := make(map[string]string, len(d.entries))
	for _, e := range d.entries {
		m[e.Key] = e.Value
	}
	return m
}

// Serialize renders the document back to .env text, restoring each entry's
// recorded quoting style.
func (d *Document) Serialize() string {
	var b strings.Builder
	for _, e := range d.entries {
		b.WriteString(e.Key)
		b.WriteByte('=')
		if e.Quote != 0 {
			b.WriteByte(e.Quote)
			b.WriteString(e.Value)
			b.WriteByte(e.Quote)
		} else {
			b.WriteString(e.Value)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
