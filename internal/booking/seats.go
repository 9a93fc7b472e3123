package booking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lynriescoop/cinema-booking/internal/model"
)

// ParseSeat parses a display seat label like "A1" or "B12" into a
// SeatRef. The row is one or more letters, the number the remaining
// digits, 1-based. Lowercase rows are accepted and normalized to
// uppercase.
func ParseSeat(label string) (model.SeatRef, error) {
	s := strings.TrimSpace(label)
	i := 0
	for i < len(s) {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			i++
			continue
		}
		break
	}
	if i == 0 || i == len(s) {
		return model.SeatRef{}, fmt.Errorf("invalid seat %q: want row letters followed by a number", label)
	}
	n, err := strconv.ParseUint(s[i:], 10, 32)
	if err != nil || n == 0 {
		return model.SeatRef{}, fmt.Errorf("invalid seat %q: seat number must be a positive integer", label)
	}
	return model.SeatRef{Row: strings.ToUpper(s[:i]), Number: uint32(n)}, nil
}

// ParseSeats parses a list of labels, rejecting duplicates. The result
// is sorted by row then number so batches are deterministic.
func ParseSeats(labels []string) ([]model.SeatRef, error) {
	seats := make([]model.SeatRef, 0, len(labels))
	seen := make(map[model.SeatRef]struct{}, len(labels))
	for _, l := range labels {
		ref, err := ParseSeat(l)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[ref]; dup {
			return nil, fmt.Errorf("duplicate seat %s", ref.Label())
		}
		seen[ref] = struct{}{}
		seats = append(seats, ref)
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Number < seats[j].Number
	})
	return seats, nil
}
