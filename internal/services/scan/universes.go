package scan

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/sweep/internal/models"
)

// Built-in universes: the scan-type selector's fixed sector and broad-ETF
// lists.
var builtinUniverses = map[string][]string{
	"sector": {"XLK", "XLF", "XLE", "XLY", "XLP", "XLI", "XLV", "XLB", "XLU"},
	"etf":    {"SPY", "QQQ", "DIA", "IWM", "VWO", "EEM", "XLF", "XLE", "XLK", "XLV", "XLY", "XLP", "XLB", "IYR"},
}

// loadUniversesFile reads a YAML file mapping universe names to ticker lists.
// An empty path means no custom universes. Names are lower-cased and tickers
// upper-cased; a custom name may not shadow a built-in.
func loadUniversesFile(path string) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universes file %s: %w", path, err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse universes file %s: %w", path, err)
	}

	custom := make(map[string][]string, len(raw))
	for name, tickers := range raw {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, exists := builtinUniverses[name]; exists {
			return nil, fmt.Errorf("universes file %s: %q shadows a built-in universe", path, name)
		}

		cleaned := make([]string, 0, len(tickers))
		for _, t := range tickers {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t != "" {
				cleaned = append(cleaned, t)
			}
		}
		custom[name] = cleaned
	}

	return custom, nil
}

// ListUniverses returns the built-in and custom universes, sorted by name.
func (s *Service) ListUniverses() []models.Universe {
	universes := make([]models.Universe, 0, len(builtinUniverses)+len(s.custom))

	for name, tickers := range builtinUniverses {
		universes = append(universes, models.Universe{Name: name, Tickers: tickers, Builtin: true})
	}
	for name, tickers := range s.custom {
		universes = append(universes, models.Universe{Name: name, Tickers: tickers})
	}

	sort.Slice(universes, func(i, j int) bool { return universes[i].Name < universes[j].Name })

	return universes
}

// ResolveUniverse returns the tickers of a named universe.
func (s *Service) ResolveUniverse(name string) ([]string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if tickers, ok := builtinUniverses[name]; ok {
		return tickers, nil
	}
	if tickers, ok := s.custom[name]; ok {
		return tickers, nil
	}

	return nil, fmt.Errorf("unknown universe: %s", name)
}
