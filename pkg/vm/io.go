package vm

// Reader supplies integers for READ. It blocks until a well-formed value is
// available; malformed input is the reader's problem.
type Reader interface {
	ReadInt() (int, error)
}

// Writer prints integers for WRITE, including any line termination
type Writer interface {
	WriteInt(v int) error
}
