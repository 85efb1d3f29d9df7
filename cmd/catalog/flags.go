package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/matst80/dematerialized-catalog/pkg/filters"
	"github.com/matst80/dematerialized-catalog/pkg/types"
)

// parseInput reads a checkbox given as name, or name|id|slug.
func parseInput(raw string) (filters.CheckedInput, error) {
	parts := strings.Split(raw, "|")
	if len(parts) > 3 {
		return filters.CheckedInput{}, fmt.Errorf("expected name|id|slug, got %q", raw)
	}
	input := filters.CheckedInput{Value: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		input.Id = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		input.Slug = strings.TrimSpace(parts[2])
	}
	if input.Value == "" && input.Id == "" && input.Slug == "" {
		return filters.CheckedInput{}, fmt.Errorf("empty filter value %q", raw)
	}
	return input, nil
}

// checkboxesFromFlags checks one box per flag value.
func checkboxesFromFlags(values map[types.Group][]string) (*filters.StaticCheckboxes, error) {
	boxes := filters.NewStaticCheckboxes()
	for _, g := range types.Groups {
		for _, raw := range values[g] {
			input, err := parseInput(raw)
			if err != nil {
				return nil, fmt.Errorf("--%s: %w", g, err)
			}
			boxes.Check(g, input)
		}
	}
	return boxes, nil
}

// parseAddress reads the starting address, either a query string or a full
// url.
func parseAddress(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return url.Values{}, nil
	}
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		return u.Query(), nil
	}
	return url.ParseQuery(strings.TrimPrefix(raw, "?"))
}
