package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/rideintegrity/schema"
)

// ParseInlineMetrics parses "name=h,t,a,e,c" entries into unscored platforms.
// Values follow the canonical metric order.
func ParseInlineMetrics(entries []string) ([]schema.PlatformScore, error) {
	out := make([]schema.PlatformScore, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		name, raw, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid metrics %q: expected name=h,t,a,e,c", entry)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("platform %q given more than once", name)
		}
		seen[name] = struct{}{}

		values, err := ParseFloats(strings.Split(raw, ","))
		if err != nil {
			return nil, fmt.Errorf("invalid metrics for %q: %w", name, err)
		}
		m, err := schema.NewMetrics(values)
		if err != nil {
			return nil, fmt.Errorf("invalid metrics for %q: %w", name, err)
		}
		out = append(out, schema.PlatformScore{Platform: name, Metrics: m})
	}
	return out, nil
}

// ParseFloats converts every argument to a float64.
func ParseFloats(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number", arg)
		}
		values[i] = v
	}
	return values, nil
}
