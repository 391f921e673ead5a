package currency

import (
	"math"
	"strconv"
	"strings"
)

// Amount is a whole-won fare. NoPrice marks a missing or unparsable price.
type Amount int64

// NoPrice never wins a minimum and sorts after every real amount.
const NoPrice Amount = math.MaxInt64

var priceGlyphs = strings.NewReplacer("₩", "", ",", "", "원", "")

// ParsePrice extracts the integer amount from a provider price string such as
// "₩450,000" or "450,000원". It never fails: anything it cannot read is NoPrice.
func ParsePrice(raw string) Amount {
	cleaned := strings.TrimSpace(priceGlyphs.Replace(raw))
	if cleaned == "" {
		return NoPrice
	}

	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return NoPrice
	}
	return Amount(v)
}

func (a Amount) Valid() bool {
	return a != NoPrice
}

// Positive reports whether a is a real, strictly positive fare.
func (a Amount) Positive() bool {
	return a.Valid() && a > 0
}

func (a Amount) String() string {
	return FormatKRW(a)
}
