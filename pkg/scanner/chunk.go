package scanner

// window is a half-open range of start offsets.
type window struct {
	start int
	end   int
}

// partition splits [0, positions) into at most n contiguous windows of
// near-equal length.
func partition(positions, n int) []window {
	if positions <= 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if n > positions {
		n = positions
	}

	windows := make([]window, 0, n)
	base, extra := positions/n, positions%n
	start := 0
	for i := 0; i < n; i++ {
		length := base
		if i < extra {
			length++
		}
		windows = append(windows, window{start: start, end: start + length})
		start += length
	}
	return windows
}
