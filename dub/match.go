package dub

type matcher interface {
	match(i int) bool
}

type rangeMatch struct {
	start, end int
}

func (r rangeMatch) match(i int) bool {
	return (i >= r.start || r.start == -1) && (i <= r.end || r.end == -1)
}

var matchAll = rangeMatch{-1, -1}

type listMatch []int

func (l listMatch) match(i int) bool {
	for _, k := range l {
		if k == i {
			return true
		}
	}
	return false
}

// Selector picks positions by number. Positions start at 1.
type Selector struct {
	matchers []matcher
}

func (s Selector) Match(i int) bool {
	for _, m := range s.matchers {
		if m.match(i) {
			return true
		}
	}
	return false
}

// Select returns the matching positions out of 1..n in ascending order.
func (s Selector) Select(n int) []int {
	var positions []int
	for i := 1; i <= n; i++ {
		if s.Match(i) {
			positions = append(positions, i)
		}
	}
	return positions
}
