package currency

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Base       string            `yaml:"base"`
	Currencies []currencyEntry   `yaml:"currencies"`
	Countries  map[string]string `yaml:"countries"`
}

type currencyEntry struct {
	Code        string  `yaml:"code"`
	Rate        float64 `yaml:"rate"`
	Symbol      string  `yaml:"symbol"`
	ZeroDecimal bool    `yaml:"zero_decimal"`
}

// LoadTableFile reads a rate table such as:
//
//	base: USD
//	currencies:
//	  - {code: USD, rate: 1, symbol: "$"}
//	  - {code: JPY, rate: 148.15, symbol: "¥", zero_decimal: true}
//	countries:
//	  JP: JPY
func LoadTableFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read currency table %s: %w", path, err)
	}
	return ParseTable(raw)
}

func ParseTable(raw []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode currency table: %w", err)
	}

	defs := make([]Definition, 0, len(f.Currencies))
	for _, c := range f.Currencies {
		defs = append(defs, Definition{
			Code:        c.Code,
			Rate:        c.Rate,
			Symbol:      c.Symbol,
			ZeroDecimal: c.ZeroDecimal,
		})
	}
	return NewTable(f.Base, defs, f.Countries)
}
