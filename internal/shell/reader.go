package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
)

// LineReader reads one line of user input per call. It returns io.EOF when
// input ends or the user aborts the prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// linerReader provides line editing and persistent history on a terminal
type linerReader struct {
	state       *liner.State
	historyFile string
}

// NewTerminalReader creates a reader with line editing. History is loaded
// from and saved to historyFile when it is set.
func NewTerminalReader(historyFile string) LineReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	r := &linerReader{state: state, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil { //nolint:gosec // path comes from configuration
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}
	}
	return r
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	return line, err
}

func (r *linerReader) AppendHistory(line string) {
	r.state.AppendHistory(line)
}

func (r *linerReader) Close() error {
	if r.historyFile != "" {
		if err := r.saveHistory(); err != nil {
			_ = r.state.Close()
			return err
		}
	}
	return r.state.Close()
}

func (r *linerReader) saveHistory() error {
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0o750); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.Create(r.historyFile) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if _, err := r.state.WriteHistory(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	return f.Close()
}

// bufferedReader reads lines from a plain stream such as a pipe
type bufferedReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewBufferedReader creates a reader that prints the prompt to out and reads
// newline-terminated lines from in.
func NewBufferedReader(in io.Reader, out io.Writer) LineReader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &bufferedReader{scanner: scanner, out: out}
}

func (r *bufferedReader) ReadLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(r.out, prompt); err != nil {
		return "", err
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *bufferedReader) AppendHistory(string) {}

func (r *bufferedReader) Close() error { return nil }
