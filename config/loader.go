package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// MunicipalitySeed is one entry of the municipality reference data file
type MunicipalitySeed struct {
	Name        string          `json:"name"`
	PricePerSqm decimal.Decimal `json:"price_per_sqm"`
}

// MunicipalitySeedFile is the layout of the seed file
type MunicipalitySeedFile struct {
	Municipalities []MunicipalitySeed `json:"municipalities"`
}

// LoadMunicipalitySeeds reads and validates the municipality seed file at path
func LoadMunicipalitySeeds(path string) ([]MunicipalitySeed, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file MunicipalitySeedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	seen := make(map[string]bool, len(file.Municipalities))
	for i, m := range file.Municipalities {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, fmt.Errorf("municipality %d: name is required", i)
		}
		if m.PricePerSqm.IsNegative() {
			return nil, fmt.Errorf("municipality %q: price_per_sqm must not be negative", name)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("municipality %q listed more than once", name)
		}
		seen[key] = true
		file.Municipalities[i].Name = name
	}

	return file.Municipalities, nil
}
