package stack

type Stack[T any] struct {
	a []T
	l int
}

// NewStack creates a new stack instance
func NewStack[T any](elm ...T) *Stack[T] {
	stack := Stack[T]{
		a: make([]T, 0, len(elm)),
		l: 0,
	}

	for _, e := range elm {
		stack.l++
		stack.a = append(stack.a, e)
	}

	return &stack
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.l++
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack.
// ok is false when the stack is empty.
func (s *Stack[T]) Pop() (elm T, ok bool) {
	if s.l < 1 {
		return elm, false
	}

	s.l--
	elm = s.a[s.l]
	s.a = s.a[:s.l]

	return elm, true
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (elm T, ok bool) {
	if s.l < 1 {
		return elm, false
	}

	return s.a[s.l-1], true
}

// Get the size of the stack
func (s *Stack[T]) Size() int {
	return s.l
}

// Reset empties the stack, keeping its capacity
func (s *Stack[T]) Reset() {
	s.a = s.a[:0]
	s.l = 0
}

// Array returns a copy of the stack contents, bottom first
func (s *Stack[T]) Array() []T {
	return append([]T(nil), s.a...)
}
