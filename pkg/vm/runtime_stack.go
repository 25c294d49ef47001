package vm

import (
	"fmt"
	"strconv"
	"strings"

	"codvm/pkg/stack"
)

// RuntimeStack holds operand values and the frame boundaries that split them
// into activation records. The initial frame starts at 0 and is never popped.
type RuntimeStack struct {
	cells  []int
	frames *stack.Stack[int] // frame pointers (index of each frame's first cell)
}

// Frame is a read-only view of one activation record
type Frame struct {
	Start  int
	Values []int
}

// NewRuntimeStack creates a stack holding only the initial frame
func NewRuntimeStack() *RuntimeStack {
	return &RuntimeStack{
		cells:  make([]int, 0, 32),
		frames: stack.NewStack(0),
	}
}

// Size returns the number of cells on the stack
func (r *RuntimeStack) Size() int {
	return len(r.cells)
}

// FrameCount returns the number of open frames, including the initial one
func (r *RuntimeStack) FrameCount() int {
	return r.frames.Size()
}

// FramePointer returns the start index of the current frame
func (r *RuntimeStack) FramePointer() int {
	fp, _ := r.frames.Peek()
	return fp
}

// Push appends v to the top
func (r *RuntimeStack) Push(v int) int {
	r.cells = append(r.cells, v)
	return v
}

// Pop removes and returns the top value
func (r *RuntimeStack) Pop() (int, error) {
	n := len(r.cells)
	if n == 0 {
		return 0, fmt.Errorf("%w: pop from empty stack", ErrStackUnderflow)
	}
	v := r.cells[n-1]
	r.cells = r.cells[:n-1]
	return v, nil
}

// Peek returns the top value without removing it
func (r *RuntimeStack) Peek() (int, error) {
	n := len(r.cells)
	if n == 0 {
		return 0, fmt.Errorf("%w: peek at empty stack", ErrStackUnderflow)
	}
	return r.cells[n-1], nil
}

// PopN removes the top n values of the current frame and returns the last
// one removed (the deepest). It never reaches into the caller's frame.
func (r *RuntimeStack) PopN(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: cannot pop %d values", ErrStackUnderflow, n)
	}
	if n == 0 {
		return 0, nil
	}

	avail := len(r.cells) - r.FramePointer()
	if n > avail {
		return 0, fmt.Errorf("%w: pop %d values, current frame holds %d", ErrStackUnderflow, n, avail)
	}

	start := len(r.cells) - n
	v := r.cells[start]
	r.cells = r.cells[:start]
	return v, nil
}

// Store pops the top value and writes it to offset in the current frame
func (r *RuntimeStack) Store(offset int) (int, error) {
	v, err := r.Pop()
	if err != nil {
		return 0, err
	}

	idx, err := r.index(offset)
	if err != nil {
		// restore the popped value so a failed store leaves the stack unchanged
		r.cells = append(r.cells, v)
		return 0, err
	}

	r.cells[idx] = v
	return v, nil
}

// Load pushes a copy of the value at offset in the current frame
func (r *RuntimeStack) Load(offset int) (int, error) {
	idx, err := r.index(offset)
	if err != nil {
		return 0, err
	}

	v := r.cells[idx]
	r.cells = append(r.cells, v)
	return v, nil
}

// NewFrameAt opens a frame whose first reserve slots are the top reserve
// values already on the stack
func (r *RuntimeStack) NewFrameAt(reserve int) error {
	if reserve < 0 || reserve > len(r.cells) {
		return fmt.Errorf("%w: reserve %d with stack height %d", ErrInvalidFrame, reserve, len(r.cells))
	}

	r.frames.Push(len(r.cells) - reserve)
	return nil
}

// PopFrame closes the current frame, discarding every value it holds
func (r *RuntimeStack) PopFrame() error {
	if r.frames.Size() <= 1 {
		return fmt.Errorf("%w: cannot close the initial frame", ErrFrameUnderflow)
	}

	fp, _ := r.frames.Pop()
	if fp < len(r.cells) {
		r.cells = r.cells[:fp]
	}
	return nil
}

// Snapshot returns the frames in order, each with a copy of its values
func (r *RuntimeStack) Snapshot() []Frame {
	fps := r.frames.Array()
	out := make([]Frame, 0, len(fps))

	for i, start := range fps {
		end := len(r.cells)
		if i+1 < len(fps) {
			end = fps[i+1]
		}
		// a frame may lie above the top after values were popped below it
		start = min(start, len(r.cells))
		end = max(min(end, len(r.cells)), start)

		out = append(out, Frame{
			Start:  fps[i],
			Values: append([]int{}, r.cells[start:end]...),
		})
	}

	return out
}

// Dump renders the stack grouped by frame, e.g. "{0}-[1, 2] {2}-[3]"
func (r *RuntimeStack) Dump() string {
	var sb strings.Builder

	for i, f := range r.Snapshot() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("{" + strconv.Itoa(f.Start) + "}-[")
		for j, v := range f.Values {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Itoa(v))
		}
		sb.WriteByte(']')
	}

	return sb.String()
}

// index resolves a frame-relative offset to an absolute cell index
func (r *RuntimeStack) index(offset int) (int, error) {
	idx := r.FramePointer() + offset
	if offset < 0 || idx >= len(r.cells) {
		return 0, fmt.Errorf("%w: offset %d from frame %d, stack height %d", ErrInvalidOffset, offset, r.FramePointer(), len(r.cells))
	}
	return idx, nil
}
