package envfile

import "strings"

// placeholderRule maps key-name substrings to a sample value.
type placeholderRule struct {
	substrings  []string
	placeholder string
}

// Rules are evaluated in order against the lowercased key; the first match
// wins. Order matters: DATABASE_URL should read as a URL, not a secret.
var placeholderRules = []placeholderRule{
	{[]string{"url", "uri"}, "https://example.com"},
	{[]string{"email", "mail"}, "user@example.com"},
	{[]string{"secret", "password", "token", "key", "pass"}, "your-secret-here"},
	{[]string{"port"}, "8080"},
	{[]string{"host"}, "localhost"},
}

// defaultPlaceholder is used when no rule matches.
const defaultPlaceholder = "changeme"

// ToExample renders the document with every value replaced by a placeholder
// chosen from the key name, preserving each line's quoting style. Used to
// generate committable .env.example files that never leak real values.
func ToExample(doc *Document) string {
	var b strings.Builder
	for _, e := range doc.Entries() {
		b.WriteString(e.Key)
		b.WriteByte('=')
		placeholder := placeholderFor(e.Key)
		if e.Quote != 0 {
			b.WriteByte(e.Quote)
			b.WriteString(placeholder)
			b.WriteByte(e.Quote)
		} else {
			b.WriteString(placeholder)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func placeholderFor(key string) string {
	lowered := strings.ToLower(key)
	for _, rule := range placeholderRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lowered, sub) {
				return rule.placeholder
			}
		}
	}
	return defaultPlaceholder
}
