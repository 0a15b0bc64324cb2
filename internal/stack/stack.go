// Package stack provides the slice backed stack used while building
// document trees.
package stack

// Stack is a LIFO of values of type T
type Stack[T any] []T

func (s *Stack[T]) Push(v T) {
	*s = append(*s, v)
}

// Pop removes the top n values (one if n is omitted). Popping more
// than Len values empties the stack.
func (s *Stack[T]) Pop(n ...int) {
	nn := 1
	if len(n) > 0 {
		nn = n[0]
	}
	for ; nn > 0 && s.Len() > 0; nn-- {
		s.PopLast()
	}

	if c := s.Cap(); c > 20 && c > s.Len()*2 {
		s.Realloc()
	}
}

// Top returns the last pushed value. ok is false if the stack is empty.
func (s Stack[T]) Top() (v T, ok bool) {
	if l := s.Len(); l > 0 {
		return s[l-1], true
	}
	return v, false
}

func (s *Stack[T]) Realloc() {
	*s = append(Stack[T](nil), *s...)
}

func (s *Stack[T]) PopLast() {
	if s.Len() <= 0 {
		return
	}
	*s = (*s)[:s.Len()-1]
}

func (s Stack[T]) Peek(n int) []T {
	if l := s.Len(); l > n {
		return s[l-n : l]
	}
	return s
}

func (s Stack[T]) Len() int {
	return len(s)
}

func (s Stack[T]) Cap() int {
	return cap(s)
}
