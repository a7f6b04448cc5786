package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/restmap/internal/lookup"
)

// parseVars turns repeated key=value flags into lookup variables
func parseVars(pairs []string) (lookup.Vars, error) {
	vars := lookup.Vars{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}

func varNames(vars lookup.Vars) []string {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func formatVars(vars lookup.Vars) string {
	if len(vars) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(vars))
	for _, k := range varNames(vars) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, vars[k]))
	}
	return strings.Join(parts, " ")
}
