package collection

// Sum adds up f over items.
func Sum[T any](items []T, f func(T) float64) float64 {
	var total float64
	for _, it := range items {
		total += f(it)
	}
	return total
}

// SumIf adds up f over the items matching pred.
func SumIf[T any](items []T, pred func(T) bool, f func(T) float64) float64 {
	var total float64
	for _, it := range items {
		if pred(it) {
			total += f(it)
		}
	}
	return total
}

func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}

// Average is 0 for an empty slice.
func Average[T any](items []T, f func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	return Sum(items, f) / float64(len(items))
}

// Percent is part/whole*100, or 0 when whole is 0.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
