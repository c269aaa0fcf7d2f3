package collection

import "strings"

// StatusAll disables the status filter.
const StatusAll = "all"

// Criteria is what the user typed into a list screen's search box and picked
// in its status dropdown. An empty Status behaves like StatusAll. A Status
// other than StatusAll matches nothing when the screen's Matcher has no
// status.
type Criteria struct {
	Status string
	Search string
}

// Matcher tells Filter where an entity keeps its status and which text
// fields the search box covers. Status is nil for entities without one.
type Matcher[T any] struct {
	Status func(T) string
	Text   func(T) []string
}

// Filter returns the items matching c, in their original order.
func Filter[T any](items []T, m Matcher[T], c Criteria) []T {
	status := c.Status
	if status == "" {
		status = StatusAll
	}
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]T, 0, len(items))
	for _, it := range items {
		if status != StatusAll && (m.Status == nil || m.Status(it) != status) {
			continue
		}
		if search != "" && !matchesText(m, it, search) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesText[T any](m Matcher[T], it T, search string) bool {
	if m.Text == nil {
		return false
	}
	for _, field := range m.Text(it) {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
