package currency

import (
	"errors"
	"fmt"
	"strings"
)

const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	INR = "INR"
	JPY = "JPY"
)

var (
	ErrMissingBase     = errors.New("base currency must be listed with rate 1")
	ErrInvalidRate     = errors.New("exchange rate must be positive")
	ErrUnknownCurrency = errors.New("country mapped to unknown currency")
)

// Info is the currency attached to a response envelope.
type Info struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

// Definition describes one currency relative to the table's base currency.
type Definition struct {
	Code        string
	Rate        float64
	Symbol      string
	ZeroDecimal bool
}

// Table is immutable after construction; share it freely between goroutines.
type Table struct {
	base      string
	rates     map[string]float64
	symbols   map[string]string
	zero      map[string]bool
	countries map[string]string
}

func NewTable(base string, defs []Definition, countries map[string]string) (*Table, error) {
	t := &Table{
		base:      normalizeCode(base),
		rates:     make(map[string]float64, len(defs)),
		symbols:   make(map[string]string, len(defs)),
		zero:      make(map[string]bool),
		countries: make(map[string]string, len(countries)),
	}

	for _, d := range defs {
		code := normalizeCode(d.Code)
		if code == "" {
			return nil, errors.New("currency code must not be empty")
		}
		if d.Rate <= 0 {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidRate, code, d.Rate)
		}
		t.rates[code] = d.Rate
		if d.Symbol != "" {
			t.symbols[code] = d.Symbol
		}
		if d.ZeroDecimal {
			t.zero[code] = true
		}
	}

	if rate, ok := t.rates[t.base]; !ok || rate != 1 {
		return nil, fmt.Errorf("%w: %q", ErrMissingBase, t.base)
	}

	for country, code := range countries {
		code = normalizeCode(code)
		if _, ok := t.rates[code]; !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownCurrency, country, code)
		}
		t.countries[normalizeCode(country)] = code
	}

	return t, nil
}

// DefaultTable returns the built-in static rates, USD based.
func DefaultTable() *Table {
	countries := map[string]string{
		"US": USD,
		"GB": GBP,
		"EU": EUR,
		"IN": INR,
		"JP": JPY,
	}
	for _, cc := range euroArea {
		countries[cc] = EUR
	}

	t, err := NewTable(USD, []Definition{
		{Code: USD, Rate: 1, Symbol: "$"},
		{Code: EUR, Rate: 0.91, Symbol: "€"},
		{Code: GBP, Rate: 0.79, Symbol: "£"},
		{Code: INR, Rate: 83.12, Symbol: "₹"},
		{Code: JPY, Rate: 148.15, Symbol: "¥", ZeroDecimal: true},
	}, countries)
	if err != nil {
		panic("currency: invalid default table: " + err.Error())
	}
	return t
}

var euroArea = []string{
	"AT", "BE", "CY", "DE", "EE", "ES", "FI", "FR", "GR", "HR",
	"IE", "IT", "LT", "LU", "LV", "MT", "NL", "PT", "SI", "SK",
}

func (t *Table) Base() string {
	return t.base
}

func (t *Table) Rate(code string) (float64, bool) {
	rate, ok := t.rates[normalizeCode(code)]
	return rate, ok
}

// Symbol falls back to the raw code for currencies without a known symbol.
func (t *Table) Symbol(code string) string {
	if s, ok := t.symbols[normalizeCode(code)]; ok {
		return s
	}
	return code
}

func (t *Table) IsZeroDecimal(code string) bool {
	return t.zero[normalizeCode(code)]
}

// CurrencyForCountry maps an ISO country code to a currency, defaulting to the base.
func (t *Table) CurrencyForCountry(country string) string {
	if code, ok := t.countries[normalizeCode(country)]; ok {
		return code
	}
	return t.base
}

func (t *Table) Info(code string) Info {
	return Info{Code: code, Symbol: t.Symbol(code)}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
