package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Ошибки I/O
	IOInfo          Code = 1000
	IOLoadFileError Code = 1001
	IOCacheError    Code = 1002

	// Разбор правил
	RuleInfo             Code = 2000
	RuleEmptyAlternative Code = 2001
	RuleMissingArrow     Code = 2002
	RuleMissingName      Code = 2003
	RuleOptionalTerminal Code = 2004
	RuleDanglingOptional Code = 2005
	RuleUnterminatedSpan Code = 2006
	RuleBadToken         Code = 2007

	// Связывание символов
	RefInfo                Code = 3000
	RefDuplicateDefinition Code = 3001
	RefUnresolvedReference Code = 3002
	RefUnusedSymbol        Code = 3003

	// Observability
	ObsInfo    Code = 9000
	ObsTimings Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	IOInfo:                 "I/O information",
	IOLoadFileError:        "Failed to load document",
	IOCacheError:           "Cache failure",
	RuleInfo:               "Rule information",
	RuleEmptyAlternative:   "Empty alternative",
	RuleMissingArrow:       "Missing arrow",
	RuleMissingName:        "Missing rule name",
	RuleOptionalTerminal:   "Optional marker on terminal",
	RuleDanglingOptional:   "Optional marker without element",
	RuleUnterminatedSpan:   "Unterminated span",
	RuleBadToken:           "Unexpected character",
	RefInfo:                "Reference information",
	RefDuplicateDefinition: "Duplicate definition",
	RefUnresolvedReference: "Unresolved reference",
	RefUnusedSymbol:        "Unused symbol",
	ObsInfo:                "Observability information",
	ObsTimings:             "Timings",
}

// Kind groups codes for reports.
type Kind uint8

const (
	KindOther Kind = iota
	KindDuplicateDefinition
	KindUnresolvedReference
	KindEmptyAlternative
	KindMalformedRule
	KindUnusedSymbol
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindDuplicateDefinition:
		return "duplicate definitions"
	case KindUnresolvedReference:
		return "unresolved references"
	case KindEmptyAlternative:
		return "empty alternatives"
	case KindMalformedRule:
		return "malformed rules"
	case KindUnusedSymbol:
		return "unused symbols"
	case KindIO:
		return "I/O"
	default:
		return "other"
	}
}

// Kind maps the code onto its report group.
func (code Code) Kind() Kind {
	switch {
	case code == RefDuplicateDefinition:
		return KindDuplicateDefinition
	case code == RefUnresolvedReference:
		return KindUnresolvedReference
	case code == RefUnusedSymbol:
		return KindUnusedSymbol
	case code == RuleEmptyAlternative:
		return KindEmptyAlternative
	case code > RuleInfo && code < RefInfo:
		return KindMalformedRule
	case code > IOInfo && code < RuleInfo:
		return KindIO
	default:
		return KindOther
	}
}

// ID returns the stable textual identifier, e.g. "GRM3002".
func (code Code) ID() string {
	switch ic := int(code); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 9000:
		return fmt.Sprintf("OBS%04d", ic)
	default:
		return fmt.Sprintf("GRM%04d", ic)
	}
}

func (code Code) Title() string {
	if desc, ok := codeDescription[code]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (code Code) String() string {
	return fmt.Sprintf("[%s]: %s", code.ID(), code.Title())
}
