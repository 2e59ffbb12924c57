package ratingservice

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseHumanTime accepts RFC3339, a plain date, or English phrases such as
// "yesterday" and "2 weeks ago", resolved against now.
func parseHumanTime(input string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(input)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)

	r, err := w.Parse(strings.ToLower(s), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize time %q", input)
	}
	return r.Time.UTC(), nil
}
