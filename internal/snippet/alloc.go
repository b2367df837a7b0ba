package snippet

// Allocator hands out tab-stop numbers in increasing order.
type Allocator struct {
	next   int
	issued []int
}

// NewAllocator returns an allocator whose first stop is first.
func NewAllocator(first int) *Allocator {
	if first < 1 {
		first = 1
	}
	return &Allocator{next: first}
}

// Next returns the next stop number and advances.
func (a *Allocator) Next() int {
	n := a.next
	a.next++
	a.issued = append(a.issued, n)
	return n
}

// Peek returns the number Next would hand out.
func (a *Allocator) Peek() int {
	return a.next
}

// Issued returns every number handed out so far.
func (a *Allocator) Issued() []int {
	out := make([]int, len(a.issued))
	copy(out, a.issued)
	return out
}
