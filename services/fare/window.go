package fare

import "slices"

var window45 = []int{1, 11, 12, 22, 23, 24, 34, 35, 45}

// WindowSeats lists the window positions of a seat catalogue.
func WindowSeats(totalSeats int) []int {
	switch totalSeats {
	case 54:
		seats := make([]int, 0, 21)
		for s := 1; s <= 11; s++ {
			seats = append(seats, s)
		}
		for s := 45; s <= 54; s++ {
			seats = append(seats, s)
		}
		return seats
	case 45:
		return slices.Clone(window45)
	default:
		return nil
	}
}

// SelectedWindowSeats returns the window seats among selected, in ascending order.
func SelectedWindowSeats(selected []int, totalSeats int) []int {
	windows := WindowSeats(totalSeats)
	var out []int
	for _, s := range selected {
		if slices.Contains(windows, s) && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}
