package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LineReader reads one line of user input after showing a prompt.
// Readline returns io.EOF when input ends and readline.ErrInterrupt on ^C.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// NewLineReader picks readline for interactive terminals and a plain line
// scanner otherwise.
func NewLineReader(in io.Reader, out io.Writer, historyFile string) (LineReader, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		rl, err := readline.NewEx(&readline.Config{
			Stdin:           f,
			Stdout:          out,
			HistoryFile:     historyFile,
			InterruptPrompt: "^C",
			EOFPrompt:       "q",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize console: %w", err)
		}
		return rl, nil
	}
	return NewScanReader(in, out), nil
}

// ScanReader is a LineReader over a plain stream.
type ScanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
	prompt  string
}

// NewScanReader creates a ScanReader that echoes prompts to out.
func NewScanReader(in io.Reader, out io.Writer) *ScanReader {
	return &ScanReader{scanner: bufio.NewScanner(in), out: out}
}

func (r *ScanReader) Readline() (string, error) {
	_, _ = fmt.Fprint(r.out, r.prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *ScanReader) SetPrompt(prompt string) {
	r.prompt = prompt
}

func (r *ScanReader) Close() error {
	return nil
}
