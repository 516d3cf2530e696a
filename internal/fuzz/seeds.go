package fuzztests

import (
	"testing"
)

const (
	maxFuzzInput = 1 << 16 // 64 KiB
	maxSeedBytes = 64 << 10
)

var ruleSeeds = []string{
	"getter-setter-block → { getter-clause setter-clause_opt }",
	"getter-setter-block → { getter-clause setter-clause? }",
	"*statement* → *expression* ;_opt | *declaration*",
	"[*code-block*](#code-block) → `{` [*statements*](#statements)<sub>opt</sub> `}`",
	"infix-operator → `|` | `||` | `->`",
	"arrow-thing -> `->` other",
	"expression → ",
	"→ missing-name",
	"no arrow here",
	"a → b | | c",
	"a → `unterminated",
	"a → _opt",
	"a → `x`_opt",
	"déclaration → nom-de-variable",
	"a → b → c",
}

var documentSeeds = []string{
	"# Expressions\n\n> expression → prefix-expression binary-expressions_opt\n",
	"## Getters {#getters}\n\n> getter-clause → `get` code-block\n> setter-clause → `set` code-block {#setter}\n",
	"```\nnot-a-rule → inside fence\n```\nreal-rule → x\n",
	"~~~\nfenced → ~~~ too\n~~~~\n",
	"See [*code-block*](declarations.md#getters) and [* *](x).\n",
	"statement → expression ; | declaration\r\nstatements → statement statements_opt\r\n",
	"﻿bom-rule → `x`",
	"> > nested → quote\n",
}

func addRuleSeeds(f *testing.F) {
	for _, s := range ruleSeeds {
		f.Add(clampSeed([]byte(s)))
	}
}

func addDocumentSeeds(f *testing.F) {
	for _, s := range documentSeeds {
		f.Add(clampSeed([]byte(s)))
	}
	for _, s := range ruleSeeds {
		f.Add(clampSeed([]byte("> " + s + "\n")))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
