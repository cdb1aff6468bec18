package booking

import (
	"fmt"
	"slices"
)

type seatSet map[int]struct{}

func newSeatSet(groups ...[]int) seatSet {
	set := seatSet{}
	for _, seats := range groups {
		for _, s := range seats {
			set[s] = struct{}{}
		}
	}
	return set
}

func (s seatSet) has(seat int) bool {
	_, ok := s[seat]
	return ok
}

func (s seatSet) sorted() []int {
	out := make([]int, 0, len(s))
	for seat := range s {
		out = append(out, seat)
	}
	slices.Sort(out)
	return out
}

// intersect returns the seats of selected that are in taken, in ascending order.
func (s seatSet) intersect(selected []int) []int {
	var out []int
	for _, seat := range selected {
		if s.has(seat) {
			out = append(out, seat)
		}
	}
	slices.Sort(out)
	return out
}

// remaining lists 1..total minus every seat in exclude.
func remaining(total int, exclude seatSet) []int {
	out := []int{}
	for seat := 1; seat <= total; seat++ {
		if !exclude.has(seat) {
			out = append(out, seat)
		}
	}
	return out
}

func sameSeats(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	return slices.Equal(newSeatSet(a).sorted(), newSeatSet(b).sorted())
}

// checkSeats rejects empty selections, duplicates and seats outside 1..total.
func checkSeats(seats []int, total int) *Error {
	if len(seats) == 0 {
		return validationError("at least one seat must be selected")
	}
	seen := seatSet{}
	for _, seat := range seats {
		if seat < 1 || seat > total {
			return validationError(fmt.Sprintf("seat %d is outside 1..%d", seat, total))
		}
		if seen.has(seat) {
			return validationError(fmt.Sprintf("seat %d is selected more than once", seat))
		}
		seen[seat] = struct{}{}
	}
	return nil
}
