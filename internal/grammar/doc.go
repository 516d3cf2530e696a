// Package grammar holds the production model of the book's grammar notation
// and the parser that turns one raw rule line into it.
//
// A rule line has the shape
//
//	name → alternative | alternative ...
//
// where every alternative is a non-empty sequence of elements. An element is
// either a Terminal (a literal keyword or punctuation, shown in bold) or a
// Nonterminal (a category name, shown in italics). A Nonterminal may carry the
// optional marker; a Terminal never does.
//
// Two spellings are accepted and may be mixed within one line:
//
//	*getter-setter-block* → **`{`** *getter-clause* *setter-clause*<sub>opt</sub> **`}`**
//	getter-setter-block → { getter-clause setter-clause_opt }
//
// In the plain spelling a bare word (letters, digits, inner hyphens) is a
// Nonterminal and bare punctuation is a Terminal; a backquoted token is always a
// Terminal. Rule.PlainText produces this spelling and ParseRule reads it back to
// an equal alternative list.
package grammar
