package grammar

import (
	"strings"
)

// PlainText renders the element in the plain spelling that ParseRule accepts.
func (e Element) PlainText() string {
	if e.IsNonterminal() {
		var s string
		if bareWordRe.MatchString(e.Text) {
			s = e.Text
		} else {
			s = "*" + e.Text + "*"
		}
		if e.Optional {
			s += "_opt"
		}
		return s
	}
	return plainLiteral(e.Text)
}

func plainLiteral(text string) string {
	switch {
	case text == "→" || text == "->":
		return text
	case barePunctRe.MatchString(text) && !strings.Contains(text, "_opt"):
		return text
	case !strings.Contains(text, "`"):
		return "`" + text + "`"
	default:
		return "**" + text + "**"
	}
}

func (a Alternative) PlainText() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.PlainText()
	}
	return strings.Join(parts, " ")
}

// PlainText renders the whole rule on one line.
func (r *Rule) PlainText() string {
	if r == nil {
		return ""
	}
	alts := make([]string, len(r.Alternatives))
	for i, a := range r.Alternatives {
		alts[i] = a.PlainText()
	}
	name := r.Name
	if !bareWordRe.MatchString(name) {
		name = "*" + name + "*"
	}
	return name + " → " + strings.Join(alts, " | ")
}
