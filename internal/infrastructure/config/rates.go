package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/iho/gocommission/internal/domain"
)

// rateFile is the YAML layout of COMMISSION_RATES_FILE. Rates are percentages.
//
//	stockist: "7.0"
//	sponsor: "8.0"
//	levels: ["3.0", "2.5", "2.0"]
type rateFile struct {
	Stockist string   `yaml:"stockist"`
	Sponsor  string   `yaml:"sponsor"`
	Levels   []string `yaml:"levels"`
}

// LoadRateTable returns the default table when path is empty, otherwise the
// validated table read from the YAML file. Missing levels are zero.
func LoadRateTable(path string) (domain.RateTable, error) {
	if path == "" {
		return domain.DefaultRateTable(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("read rate table: %w", err)
	}

	return ParseRateTable(raw)
}

// ParseRateTable decodes and validates a YAML rate table.
func ParseRateTable(raw []byte) (domain.RateTable, error) {
	var file rateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.RateTable{}, fmt.Errorf("decode rate table: %w", err)
	}

	if len(file.Levels) > domain.MaxAncestorLevels {
		return domain.RateTable{}, fmt.Errorf("%w: %d levels, at most %d allowed",
			domain.ErrInvalidRateTable, len(file.Levels), domain.MaxAncestorLevels)
	}

	stockist, err := parseRate("stockist", file.Stockist)
	if err != nil {
		return domain.RateTable{}, err
	}

	sponsor, err := parseRate("sponsor", file.Sponsor)
	if err != nil {
		return domain.RateTable{}, err
	}

	var levels [domain.MaxAncestorLevels]decimal.Decimal
	for i, s := range file.Levels {
		levels[i], err = parseRate(fmt.Sprintf("level %d", i+1), s)
		if err != nil {
			return domain.RateTable{}, err
		}
	}

	return domain.NewRateTable(stockist, sponsor, levels)
}

func parseRate(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s rate %q: %v", domain.ErrInvalidRateTable, name, s, err)
	}

	return d, nil
}
