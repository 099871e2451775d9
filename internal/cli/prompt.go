package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers from the terminal, or line by line when input is
// piped.
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// Line prints label and returns the trimmed answer.
func (p *prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	return p.readLine()
}

// Secret prints label and reads without echo when input is a terminal.
func (p *prompter) Secret(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	return p.readLine()
}

func (p *prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
