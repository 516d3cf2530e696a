package document

import (
	"regexp"
	"strings"

	"fortio.org/safecast"

	"grammarref/internal/grammar"
	"grammarref/internal/source"
)

var (
	headingRe       = regexp.MustCompile(`^#{1,6}\s`)
	trailingAnchor  = regexp.MustCompile(`\s*\{#([^}\s]+)\}\s*$`)
	mentionRe       = regexp.MustCompile(`\[\*([^*\]]+)\*\]\(([^)\s]*)\)`)
	ruleNameRe      = regexp.MustCompile(`^(?:\*[^*]+\*|\[\*[^*\]]+\*\]\([^)\s]*\)|[\p{L}\p{N}][\p{L}\p{N}\p{M}-]*)$`)
)

// Extract scans a markdown chapter.
//
// A rule is a line that contains an arrow whose left side is a single
// category name, and that either sits in a '>' blockquote or writes that name
// in italics or as a [*name*](target) link. Its anchor is
// <doc-slug>#<fragment>, where the fragment is a trailing {#fragment} or the
// slug of the name. Headings and fenced code blocks are skipped. Links of the
// form [*name*](target) outside rule lines become mentions.
func Extract(f *source.File) Record {
	rec := Record{Path: f.Path, FileID: f.ID, Slug: DocSlug(f.Path)}
	content := string(f.Content)

	var (
		fence  string
		offset int
	)
	for offset <= len(content) {
		end := strings.IndexByte(content[offset:], '\n')
		if end < 0 {
			end = len(content)
		} else {
			end += offset
		}
		line := content[offset:end]
		lineStart := offset
		offset = end + 1

		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		if headingRe.MatchString(trimmed) {
			continue
		}

		prefix := quotePrefix(line)
		quoted := strings.Contains(line[:prefix], ">")
		bodyStart := lineStart + prefix
		body := content[bodyStart:end]
		if rr, ok := ruleLine(f.ID, body, bodyStart, quoted, rec.Slug); ok {
			rec.Rules = append(rec.Rules, rr)
			continue
		}
		for _, m := range mentionRe.FindAllStringSubmatchIndex(line, -1) {
			name := grammar.NormalizeName(line[m[2]:m[3]])
			if name == "" {
				continue
			}
			rec.Mentions = append(rec.Mentions, Mention{
				Name:   name,
				Target: line[m[4]:m[5]],
				Span:   span(f.ID, lineStart+m[0], lineStart+m[1]),
			})
		}
	}
	return rec
}

// ruleLine recognises a rule in body, which starts at byte offset base.
// Outside a blockquote only a marked-up left side makes a rule, so prose
// such as "Devuelve → valor" stays prose.
func ruleLine(file source.FileID, body string, base int, quoted bool, slug string) (RawRule, bool) {
	arrow := arrowIndex(body)
	if arrow < 0 {
		return RawRule{}, false
	}
	lhs := strings.TrimSpace(body[:arrow])
	if !ruleNameRe.MatchString(lhs) {
		return RawRule{}, false
	}
	if !quoted && !strings.HasPrefix(lhs, "*") && !strings.HasPrefix(lhs, "[") {
		return RawRule{}, false
	}

	text := body
	anchor := ""
	if loc := trailingAnchor.FindStringSubmatchIndex(text); loc != nil {
		anchor = text[loc[2]:loc[3]]
		text = text[:loc[0]]
	}
	lead := len(text) - len(strings.TrimLeft(text, " \t"))
	text = strings.TrimRight(text[lead:], " \t\r")
	switch {
	case anchor == "":
		anchor = DefaultAnchor(slug, bareName(lhs))
	case !strings.Contains(anchor, "#"):
		anchor = slug + "#" + anchor
	}
	start := base + lead
	return RawRule{
		Text:   text,
		Anchor: anchor,
		Span:   span(file, start, start+len(text)),
	}, true
}

func arrowIndex(s string) int {
	a := strings.Index(s, "→")
	b := strings.Index(s, "->")
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	default:
		return min(a, b)
	}
}

// bareName strips italic and link markup from a rule's left side.
func bareName(lhs string) string {
	if m := mentionRe.FindStringSubmatch(lhs); m != nil {
		return grammar.NormalizeName(m[1])
	}
	return grammar.NormalizeName(strings.Trim(lhs, "*"))
}

// quotePrefix returns the length of the blockquote markers and spaces at the
// start of line.
func quotePrefix(line string) int {
	i := 0
	for i < len(line) {
		switch line[i] {
		case ' ', '\t', '>':
			i++
		default:
			return i
		}
	}
	return i
}

func fenceMarker(trimmed string) string {
	for _, ch := range []string{"`", "~"} {
		marker := strings.Repeat(ch, 3)
		if strings.HasPrefix(trimmed, marker) {
			n := len(trimmed) - len(strings.TrimLeft(trimmed, ch))
			return strings.Repeat(ch, n)
		}
	}
	return ""
}

func span(file source.FileID, start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(err)
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(err)
	}
	return source.Span{File: file, Start: s, End: e}
}
