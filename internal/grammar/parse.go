package grammar

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"grammarref/internal/diag"
	"grammarref/internal/source"
)

// ParseRule parses one raw rule line. span covers raw inside its document and
// is used to place diagnostics; a zero span is fine for ad-hoc input.
//
// On any malformed input ParseRule reports through r and returns (nil, false):
// no partial rule is produced for the line. Every problem on the line is
// reported, not just the first one.
func ParseRule(raw string, span source.Span, r diag.Reporter) (*Rule, bool) {
	if r == nil {
		r = diag.NopReporter{}
	}
	p := ruleParser{raw: raw, span: span, reporter: r}
	return p.parse()
}

type ruleParser struct {
	raw      string
	span     source.Span
	reporter diag.Reporter
	failed   bool
}

func (p *ruleParser) sub(start, end int) source.Span {
	from, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("rule offset overflow: %w", err))
	}
	to, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("rule offset overflow: %w", err))
	}
	return p.span.Sub(from, to)
}

func (p *ruleParser) errorf(code diag.Code, start, end int, format string, args ...any) {
	p.failed = true
	diag.ReportError(p.reporter, code, p.sub(start, end), fmt.Sprintf(format, args...)).Emit()
}

func (p *ruleParser) parse() (*Rule, bool) {
	lexemes, stop, err := lexRule(p.raw)
	if err != nil {
		end := stop + 1
		if end > len(p.raw) {
			end = len(p.raw)
		}
		p.errorf(diag.RuleBadToken, stop, end, "unexpected character in rule: %v", err)
		return nil, false
	}

	arrow := -1
	for i, lx := range lexemes {
		if lx.kind == tokArrow {
			arrow = i
			break
		}
	}
	if arrow < 0 {
		p.errorf(diag.RuleMissingArrow, 0, len(p.raw), "rule has no arrow (→) separating name and alternatives")
		return nil, false
	}

	rule := &Rule{Span: p.span}
	p.parseName(rule, lexemes[:arrow], lexemes[arrow])
	rule.Alternatives = p.parseAlternatives(lexemes[arrow+1:], lexemes[arrow].end)

	if p.failed {
		return nil, false
	}
	return rule, true
}

func (p *ruleParser) parseName(rule *Rule, lhs []lexeme, arrow lexeme) {
	if len(lhs) == 0 {
		p.errorf(diag.RuleMissingName, 0, arrow.start, "rule has no name before the arrow")
		return
	}
	if len(lhs) == 1 && isNameLexeme(lhs[0].kind) {
		rule.Name = NormalizeName(nameOf(lhs[0]))
		rule.NameSpan = p.sub(lhs[0].start, lhs[0].end)
		if rule.Name == "" {
			p.errorf(diag.RuleMissingName, lhs[0].start, arrow.start, "rule name %q is empty", lhs[0].value)
		}
		return
	}
	// переводные имена могут состоять из нескольких слов
	words := make([]string, 0, len(lhs))
	for _, lx := range lhs {
		if lx.kind != tokWord {
			p.errorf(diag.RuleMissingName, lhs[0].start, arrow.start, "rule name must be a single category, got %q", strings.TrimSpace(p.raw[lhs[0].start:arrow.start]))
			return
		}
		words = append(words, lx.value)
	}
	rule.Name = NormalizeName(strings.Join(words, " "))
	rule.NameSpan = p.sub(lhs[0].start, lhs[len(lhs)-1].end)
}

// parseAlternatives splits rhs on bars. afterArrow is the offset right after
// the arrow and anchors diagnostics for an empty first alternative.
func (p *ruleParser) parseAlternatives(rhs []lexeme, afterArrow int) []Alternative {
	var alts []Alternative
	segStart := afterArrow
	var seg []lexeme
	index := 0
	flush := func(segEnd int) {
		index++
		if len(seg) == 0 {
			p.errorf(diag.RuleEmptyAlternative, segStart, segEnd, "alternative %d is empty", index)
		} else if alt, ok := p.parseAlternative(seg); ok {
			alts = append(alts, alt)
		}
		seg = nil
	}
	for _, lx := range rhs {
		if lx.kind == tokBar {
			flush(lx.start)
			segStart = lx.end
			continue
		}
		seg = append(seg, lx)
	}
	flush(len(p.raw))
	return alts
}

func (p *ruleParser) parseAlternative(seg []lexeme) (Alternative, bool) {
	alt := Alternative{
		Elements: make([]Element, 0, len(seg)),
		Span:     p.sub(seg[0].start, seg[len(seg)-1].end),
	}
	ok := true
	for _, lx := range seg {
		switch {
		case lx.kind == tokSubOpt || lx.kind == tokPlainOpt:
			if len(alt.Elements) == 0 {
				p.errorf(diag.RuleDanglingOptional, lx.start, lx.end, "optional marker has no preceding element")
				ok = false
				continue
			}
			last := &alt.Elements[len(alt.Elements)-1]
			if last.IsTerminal() {
				p.errorf(diag.RuleOptionalTerminal, lx.start, lx.end, "optional marker cannot follow terminal %q", last.Text)
				ok = false
				continue
			}
			last.Optional = true
			last.Span = last.Span.Cover(p.sub(lx.start, lx.end))
		case lx.kind == tokStray:
			p.errorf(diag.RuleUnterminatedSpan, lx.start, len(p.raw), "unterminated %q span", lx.value)
			ok = false
		case isNameLexeme(lx.kind):
			name := NormalizeName(nameOf(lx))
			if name == "" {
				p.errorf(diag.RuleBadToken, lx.start, lx.end, "empty category name %q", lx.value)
				ok = false
				continue
			}
			alt.Elements = append(alt.Elements, Element{Kind: ElemNonterminal, Text: name, Span: p.sub(lx.start, lx.end)})
		case isLiteralLexeme(lx.kind) || lx.kind == tokArrow:
			// стрелка после первой считается литералом (например, `->` в типе результата)
			alt.Elements = append(alt.Elements, Element{Kind: ElemTerminal, Text: literalOf(lx), Span: p.sub(lx.start, lx.end)})
		default:
			p.errorf(diag.RuleBadToken, lx.start, lx.end, "unexpected %q in rule", lx.value)
			ok = false
		}
	}
	if len(alt.Elements) == 0 {
		// только маркеры без элементов: диагностика уже выдана выше
		return alt, false
	}
	return alt, ok
}
