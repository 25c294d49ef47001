package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

const (
	DefaultPrompt = "Please enter an integer: "
	retryMessage  = "Invalid input. Please enter an integer."
)

// IntReader reads integers from a console
type IntReader interface {
	ReadInt() (int, error)
	Close() error
}

// NewReader returns a liner backed reader when lineEditing is set and in is a
// terminal, and a plain prompt reader otherwise
func NewReader(in *os.File, out io.Writer, prompt string, lineEditing bool) IntReader {
	if lineEditing && (isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())) {
		return NewLineReader(out, prompt)
	}
	return NewPromptReader(in, out, prompt)
}

// PromptReader prompts on out and reads one integer per line from in,
// re-prompting until the line parses
type PromptReader struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
}

// NewPromptReader creates a PromptReader. An empty prompt selects DefaultPrompt.
func NewPromptReader(in io.Reader, out io.Writer, prompt string) *PromptReader {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &PromptReader{in: bufio.NewReader(in), out: out, prompt: prompt}
}

// ReadInt blocks until a well-formed integer is read. It fails only when
// input ends.
func (r *PromptReader) ReadInt() (int, error) {
	for {
		fmt.Fprint(r.out, r.prompt)

		line, err := r.in.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("console: %w", io.ErrUnexpectedEOF)
			}
			return 0, fmt.Errorf("console: %w", err)
		}

		if v, ok := parseInt(line); ok {
			return v, nil
		}
		fmt.Fprintln(r.out, retryMessage)
	}
}

// Close is a no-op; the underlying reader belongs to the caller
func (r *PromptReader) Close() error {
	return nil
}

// LineReader reads integers with line editing and history
type LineReader struct {
	state  *liner.State
	out    io.Writer
	prompt string
}

// NewLineReader takes over the terminal until Close is called. Retry
// messages go to out.
func NewLineReader(out io.Writer, prompt string) *LineReader {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	return &LineReader{state: ln, out: out, prompt: prompt}
}

func (r *LineReader) ReadInt() (int, error) {
	for {
		line, err := r.state.Prompt(r.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return 0, fmt.Errorf("console: %w", io.ErrUnexpectedEOF)
			}
			return 0, fmt.Errorf("console: %w", err)
		}

		if v, ok := parseInt(line); ok {
			r.state.AppendHistory(strings.TrimSpace(line))
			return v, nil
		}
		fmt.Fprintln(r.out, retryMessage)
	}
}

// Close restores the terminal
func (r *LineReader) Close() error {
	return r.state.Close()
}

// LineWriter prints one integer per line
type LineWriter struct {
	out io.Writer
}

func NewLineWriter(out io.Writer) *LineWriter {
	return &LineWriter{out: out}
}

func (w *LineWriter) WriteInt(v int) error {
	_, err := fmt.Fprintln(w.out, v)
	return err
}

func parseInt(line string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(line))
	return v, err == nil
}
