package vm_test

import (
	"codvm/pkg/vm"
	"errors"
	"slices"
	"testing"
)

func cells(r *vm.RuntimeStack) []int {
	var out []int
	for _, f := range r.Snapshot() {
		out = append(out, f.Values...)
	}
	return out
}

func TestPushPopReturnsLastPushed(t *testing.T) {
	r := vm.NewRuntimeStack()
	for _, v := range []int{4, 8, 15, 16, 23, 42} {
		r.Push(v)
	}

	got, err := r.Pop()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if r.Size() != 5 {
		t.Errorf("expected size 5, got %d", r.Size())
	}
}

func TestPopEmpty(t *testing.T) {
	r := vm.NewRuntimeStack()

	if _, err := r.Pop(); !errors.Is(err, vm.ErrStackUnderflow) {
		t.Errorf("Pop: expected ErrStackUnderflow, got %v", err)
	}
	if _, err := r.Peek(); !errors.Is(err, vm.ErrStackUnderflow) {
		t.Errorf("Peek: expected ErrStackUnderflow, got %v", err)
	}
	if _, err := r.Store(0); !errors.Is(err, vm.ErrStackUnderflow) {
		t.Errorf("Store: expected ErrStackUnderflow, got %v", err)
	}
}

func TestStoreThenLoad(t *testing.T) {
	r := vm.NewRuntimeStack()
	r.Push(10)
	r.Push(20)
	r.Push(30)
	r.Push(99)
	before := r.Size()

	if _, err := r.Store(1); err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, err := r.Load(1); err != nil {
		t.Fatalf("load: %v", err)
	}

	top, _ := r.Peek()
	if top != 99 {
		t.Errorf("expected 99 on top, got %d", top)
	}
	if r.Size() != before {
		t.Errorf("expected height %d, got %d", before, r.Size())
	}
	if got := cells(r); !slices.Equal(got, []int{10, 99, 30, 99}) {
		t.Errorf("unexpected cells %v", got)
	}
}

func TestOffsetsAreFrameRelative(t *testing.T) {
	r := vm.NewRuntimeStack()
	r.Push(1)
	r.Push(2)
	r.Push(3)
	if err := r.NewFrameAt(1); err != nil {
		t.Fatalf("NewFrameAt: %v", err)
	}

	if v, err := r.Load(0); err != nil || v != 3 {
		t.Errorf("expected Load(0) = 3, got %d (%v)", v, err)
	}
	if _, err := r.Load(2); !errors.Is(err, vm.ErrInvalidOffset) {
		t.Errorf("expected ErrInvalidOffset, got %v", err)
	}

	r.Push(7)
	if _, err := r.Store(2); !errors.Is(err, vm.ErrInvalidOffset) {
		t.Errorf("expected ErrInvalidOffset for store past top, got %v", err)
	}
	if r.Size() != 5 {
		t.Errorf("failed store changed height to %d", r.Size())
	}
}

func TestOpenCloseFrame(t *testing.T) {
	r := vm.NewRuntimeStack()
	r.Push(1)
	r.Push(2)
	r.Push(3)

	if err := r.NewFrameAt(2); err != nil {
		t.Fatalf("NewFrameAt: %v", err)
	}
	if r.FramePointer() != 1 || r.FrameCount() != 2 {
		t.Errorf("expected fp 1 with 2 frames, got fp %d with %d", r.FramePointer(), r.FrameCount())
	}

	if err := r.PopFrame(); err != nil {
		t.Fatalf("PopFrame: %v", err)
	}
	if got := cells(r); !slices.Equal(got, []int{1}) {
		t.Errorf("expected [1], got %v", got)
	}
	if r.FrameCount() != 1 {
		t.Errorf("expected only the initial frame, got %d", r.FrameCount())
	}
}

func TestFrameErrors(t *testing.T) {
	r := vm.NewRuntimeStack()
	if err := r.PopFrame(); !errors.Is(err, vm.ErrFrameUnderflow) {
		t.Errorf("expected ErrFrameUnderflow, got %v", err)
	}

	r.Push(1)
	if err := r.NewFrameAt(2); !errors.Is(err, vm.ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame, got %v", err)
	}
	if err := r.NewFrameAt(-1); !errors.Is(err, vm.ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame for negative reserve, got %v", err)
	}
}

func TestPopN(t *testing.T) {
	r := vm.NewRuntimeStack()
	for _, v := range []int{1, 2, 3, 4} {
		r.Push(v)
	}

	v, err := r.PopN(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 2 {
		t.Errorf("expected deepest removed value 2, got %d", v)
	}
	if r.Size() != 1 {
		t.Errorf("expected size 1, got %d", r.Size())
	}

	r.Push(5)
	if err := r.NewFrameAt(1); err != nil {
		t.Fatalf("NewFrameAt: %v", err)
	}
	if _, err := r.PopN(2); !errors.Is(err, vm.ErrStackUnderflow) {
		t.Errorf("expected ErrStackUnderflow when popping into caller frame, got %v", err)
	}
}

func TestDump(t *testing.T) {
	r := vm.NewRuntimeStack()
	if got := r.Dump(); got != "{0}-[]" {
		t.Errorf("empty stack: got %q", got)
	}

	for v := 1; v <= 8; v++ {
		r.Push(v)
	}
	_ = r.NewFrameAt(5)
	_ = r.NewFrameAt(2)

	expected := "{0}-[1, 2, 3] {3}-[4, 5, 6] {6}-[7, 8]"
	if got := r.Dump(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}

	_ = r.NewFrameAt(0)
	if got := r.Dump(); got != expected+" {8}-[]" {
		t.Errorf("empty top frame: got %q", got)
	}
}
