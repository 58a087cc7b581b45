package currency

import (
	"math"
	"regexp"
	"strconv"
)

// FreeMarker is the literal price text the model uses for no-cost resources.
const FreeMarker = "Free"

var amountPattern = regexp.MustCompile(`\$?(\d+\.?\d*)`)

// Normalizer rewrites base-currency price text into a target currency.
// It never fails: anything it cannot interpret is returned unchanged.
type Normalizer struct {
	table *Table
}

func NewNormalizer(table *Table) *Normalizer {
	return &Normalizer{table: table}
}

func (n *Normalizer) Table() *Table {
	return n.table
}

func (n *Normalizer) Normalize(price, target string) string {
	if price == "" || price == FreeMarker {
		return price
	}

	m := amountPattern.FindStringSubmatch(price)
	if m == nil {
		return price
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return price
	}

	if target == n.table.Base() {
		return price
	}

	rate, ok := n.table.Rate(target)
	if !ok {
		rate = 1
	}

	return n.table.Symbol(target) + n.format(amount*rate, target)
}

func (n *Normalizer) format(amount float64, code string) string {
	if n.table.IsZeroDecimal(code) {
		return strconv.FormatFloat(math.Round(amount), 'f', 0, 64)
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
