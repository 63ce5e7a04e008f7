package currency

import (
	"fmt"
	"math"
)

type style struct {
	symbol   string
	sep      string
	decimals int
}

var styles = map[string]style{
	"USD": {symbol: "$", sep: ",", decimals: 2},
	"EUR": {symbol: "€", sep: ".", decimals: 2},
	"GBP": {symbol: "£", sep: ",", decimals: 2},
	"SGD": {symbol: "S$", sep: ",", decimals: 2},
	"JPY": {symbol: "¥", sep: ",", decimals: 0},
	"IDR": {symbol: "Rp", sep: ".", decimals: 0},
}

// Format renders an amount for display in the given currency. Currencies
// without a known style fall back to "CODE amount" with two decimals.
func Format(amount float64, code string) string {
	st, ok := styles[code]
	if !ok {
		return fmt.Sprintf("%s %.2f", code, amount)
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	pow := math.Pow(10, float64(st.decimals))
	amount = math.Round(amount*pow) / pow

	whole := math.Floor(amount)
	frac := amount - whole

	intStr := fmt.Sprintf("%.0f", whole)
	formatted := addThousandsSeparator(intStr, st.sep)

	result := st.symbol + formatted
	if st.decimals > 0 {
		result += fmt.Sprintf("%.*f", st.decimals, frac)[1:]
	}
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
