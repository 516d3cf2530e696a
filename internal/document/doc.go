// Package document pulls grammar rules and category mentions out of markdown
// chapters. It only reads the bytes of an already loaded source.File; no
// grammar parsing happens here.
package document
