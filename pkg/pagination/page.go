package pagination

// MaxOffset caps Offset. It is far beyond any upstream list or filtered set,
// so a page at the cap is always empty, and offset+size cannot overflow.
const MaxOffset = 1 << 30

// Offset returns the zero-based index of the first item on a 1-based page.
// Pages below 1 are treated as page 1; offsets past MaxOffset saturate.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		return 0
	}
	if page-1 > MaxOffset/size {
		return MaxOffset
	}
	return min((page-1)*size, MaxOffset)
}

// Paginate slices one page out of an already filtered and sorted set.
// It returns the page window, the total number of items and whether more
// items exist after this page. A page past the end yields an empty window.
func Paginate[T any](items []T, page, size int) (window []T, total int, hasMore bool) {
	total = len(items)
	if size <= 0 {
		return []T{}, total, false
	}

	offset := Offset(page, size)
	start := min(offset, total)
	end := min(start+size, total)

	window = make([]T, end-start)
	copy(window, items[start:end])

	return window, total, offset < total-size
}
