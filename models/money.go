package models

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatCents renders an integer-cents amount as a pt-BR currency string,
// e.g. 1234567 -> "R$ 12.345,67". The amount stays in integer math; only the
// grouping of the whole-real part is locale work.
func FormatCents(cents int64) string {
	return ptBR.Sprintf("R$ %d,%02d", cents/100, cents%100)
}
