// Package fuzztests houses Go fuzz harnesses for the front half of the
// checker (markdown -> extracted rules -> parsed productions). They guard
// against panics, hangs and out-of-bounds spans on arbitrary input.
//
// Назначение: прогонять произвольные байты через document.Extract и
// grammar.ParseRule и проверять структурные инварианты через testkit.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
