package mapx

// Unique returns a new slice containing only the first occurrence of each element.
// Insertion order is preserved. Returns nil for a nil slice.
func Unique[T comparable](s []T) []T {
	if s == nil {
		return nil
	}

	seen := make(map[T]struct{}, len(s))
	result := make([]T, 0, len(s))

	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

// Windows cuts s into consecutive sub-slices of at most size elements.
// The sub-slices alias s but cannot grow into each other.
// A non-positive size yields a single window.
func Windows[T any](s []T, size int) [][]T {
	if len(s) == 0 {
		return nil
	}

	if size <= 0 || size >= len(s) {
		return [][]T{s[:len(s):len(s)]}
	}

	windows := make([][]T, 0, (len(s)+size-1)/size)

	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		windows = append(windows, s[start:end:end])
	}

	return windows
}
