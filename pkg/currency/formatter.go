package currency

import (
	"math"
	"strconv"
)

func FormatKRW(amount Amount) string {
	if !amount.Valid() {
		return "-"
	}
	return formatWon(int64(amount))
}

// FormatKRWFloat rounds to the nearest won, used for averages.
func FormatKRWFloat(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	return formatWon(int64(math.Round(amount)))
}

func formatWon(v int64) string {
	negative := v < 0
	if negative {
		v = -v
	}

	result := "₩" + addThousandsSeparator(strconv.FormatInt(v, 10), ",")
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
