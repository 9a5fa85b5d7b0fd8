package pdf

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatINR formatea un monto con dos decimales y agrupación india (lakh/crore).
// Ej: 12345678.9 → "1,23,45,678.90".
func FormatINR(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var groups []string
	if len(intPart) > 3 {
		groups = append(groups, intPart[len(intPart)-3:])
		intPart = intPart[:len(intPart)-3]
		for len(intPart) > 2 {
			groups = append(groups, intPart[len(intPart)-2:])
			intPart = intPart[:len(intPart)-2]
		}
	}
	if intPart != "" {
		groups = append(groups, intPart)
	}
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}

	out := strings.Join(groups, ",") + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

var (
	ones = []string{"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	tens = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

	titleCase = cases.Title(language.English)
)

// belowHundred n en [0, 99].
func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}

// belowThousand n en [0, 999].
func belowThousand(n int64) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, ones[n/100]+" hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

// integerWords escala india: crore (10^7), lakh (10^5), thousand, hundred.
func integerWords(n int64) string {
	if n == 0 {
		return "zero"
	}
	var parts []string
	if n >= 10_000_000 {
		parts = append(parts, integerWords(n/10_000_000)+" crore")
		n %= 10_000_000
	}
	if n >= 100_000 {
		parts = append(parts, belowHundred(n/100_000)+" lakh")
		n %= 100_000
	}
	if n >= 1000 {
		parts = append(parts, belowHundred(n/1000)+" thousand")
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, belowThousand(n))
	}
	return strings.Join(parts, " ")
}

// AmountInWords monto en letras como se imprime en las facturas indias.
// Ej: 1180.50 → "Rupees One Thousand One Hundred Eighty And Fifty Paise Only".
func AmountInWords(d decimal.Decimal) string {
	d = d.Abs().Round(2)
	rupees := d.IntPart()
	paise := d.Sub(decimal.NewFromInt(rupees)).Shift(2).IntPart()

	words := "rupees " + integerWords(rupees)
	if paise > 0 {
		words += " and " + belowHundred(paise) + " paise"
	}
	return titleCase.String(words + " only")
}
