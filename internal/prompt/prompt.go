// Package prompt asks the operator yes/no questions on a terminal.
//
// A Prompter reads answers line by line. When the caller fixed an answer
// (--yes) questions are answered without reading.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Answer fixes the reply to every question.
type Answer int

const (
	// Ask reads a reply from the input.
	Ask Answer = iota
	// AssumeYes answers yes without reading.
	AssumeYes
	// AssumeNo answers no without reading.
	AssumeNo
)

// Prompter asks questions on out and reads replies from in.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	answer Answer
}

// New returns a prompter. A nil in behaves like a closed input.
func New(in io.Reader, out io.Writer, answer Answer) *Prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &Prompter{in: bufio.NewReader(in), out: out, answer: answer}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Confirm asks question until the reply is yes or no. End of input is no.
func (p *Prompter) Confirm(question string) bool {
	switch p.answer {
	case AssumeYes:
		fmt.Fprintf(p.out, "%s [y/n]: y\n", question)
		return true
	case AssumeNo:
		fmt.Fprintf(p.out, "%s [y/n]: n\n", question)
		return false
	}
	for {
		fmt.Fprintf(p.out, "%s [y/n]: ", question)
		line, err := p.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(p.out, "\nread reply: %v\n", err)
			} else {
				fmt.Fprintln(p.out)
			}
			return false
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// Acknowledge shows message and, when replies are read, waits for Enter.
func (p *Prompter) Acknowledge(message string) {
	fmt.Fprintln(p.out, message)
	if p.answer != Ask {
		return
	}
	fmt.Fprint(p.out, "Press Enter to continue.")
	_, _ = p.in.ReadString('\n')
	fmt.Fprintln(p.out)
}
