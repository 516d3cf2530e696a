// Package render turns grammar rules into display structures and prints them
// through several backends.
//
// Render builds a Production: lines of typed segments with terminals as
// literals, nonterminals as categories linked through a resolve function, and
// optional markers placed right after their category. Backends (Plain,
// Markdown, HTML, Terminal) only walk segments; EBNF exports a whole grammar.
package render
