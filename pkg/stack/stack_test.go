package stack_test

import (
	"codvm/pkg/stack"
	"testing"
)

func TestPushPop(t *testing.T) {
	s := stack.NewStack(1, 2)
	s.Push(3)

	if s.Size() != 3 {
		t.Fatalf("expected size 3, got %d", s.Size())
	}

	for _, expected := range []int{3, 2, 1} {
		got, ok := s.Pop()
		if !ok {
			t.Fatalf("Pop reported empty stack, expected %d", expected)
		}
		if got != expected {
			t.Errorf("expected %d, got %d", expected, got)
		}
	}

	if _, ok := s.Pop(); ok {
		t.Errorf("expected Pop on empty stack to report !ok")
	}
}

func TestPeek(t *testing.T) {
	s := stack.NewStack[string]()
	if _, ok := s.Peek(); ok {
		t.Fatalf("expected Peek on empty stack to report !ok")
	}

	s.Push("a")
	s.Push("b")
	top, ok := s.Peek()
	if !ok || top != "b" {
		t.Errorf("expected b, got %q (ok=%v)", top, ok)
	}
	if s.Size() != 2 {
		t.Errorf("Peek changed size to %d", s.Size())
	}
}

func TestArrayIsACopy(t *testing.T) {
	s := stack.NewStack(0, 3)
	arr := s.Array()
	arr[0] = 42

	if got := s.Array()[0]; got != 0 {
		t.Errorf("mutating Array() result leaked into stack: %d", got)
	}

	s.Reset()
	if s.Size() != 0 || len(s.Array()) != 0 {
		t.Errorf("expected empty stack after Reset")
	}
}
