package httpapi

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-dispatch-dashboard/components/dispatch"
)

// Query parameter names for the filter cascade.
const (
	ParamDepot = "depot"
	ParamMonth = "month"
	ParamWeek  = "week"
)

// NoneToken selects nothing for a filter stage. An absent or empty parameter
// keeps the stage default.
const NoneToken = "-"

// ErrBadSelection reports a malformed filter parameter.
var ErrBadSelection = errors.New("httpapi: invalid selection")

// SelectionFromValues reads the depot, month and week parameters. Values may be
// comma separated and may repeat.
func SelectionFromValues(values url.Values) (dispatch.Selection, error) {
	return SelectionFromLookup(func(key string) []string { return values[key] })
}

// SelectionFromLookup builds a selection from any parameter source.
func SelectionFromLookup(lookup func(key string) []string) (dispatch.Selection, error) {
	var sel dispatch.Selection
	var err error
	if sel.Depots, err = ParseList(ParamDepot, lookup(ParamDepot)); err != nil {
		return dispatch.Selection{}, err
	}
	if sel.Months, err = ParseList(ParamMonth, lookup(ParamMonth)); err != nil {
		return dispatch.Selection{}, err
	}
	if sel.Weeks, err = ParseList(ParamWeek, lookup(ParamWeek)); err != nil {
		return dispatch.Selection{}, err
	}
	return sel, nil
}

// ParseList splits raw parameter values on commas. A comma inside a value is
// written %2C and a percent sign %25. It returns nil when no value was given
// and an empty, non-nil slice for NoneToken.
func ParseList(name string, raw []string) ([]string, error) {
	var values []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, unescapeValue(part))
			}
		}
	}
	if len(values) == 0 {
		return nil, nil
	}
	if lo.Contains(values, NoneToken) {
		if len(values) > 1 {
			return nil, fmt.Errorf("%w: %s mixes %q with values", ErrBadSelection, name, NoneToken)
		}
		return []string{}, nil
	}
	return lo.Uniq(values), nil
}

// unescapeValue decodes %2C and %25. Values that are not valid escapes, such
// as a bare "50%", pass through unchanged.
func unescapeValue(v string) string {
	if !strings.Contains(v, "%") {
		return v
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}
