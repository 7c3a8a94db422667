package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// consolePrompt reads answers line by line from an interactive terminal.
// A single goroutine owns the reader, so a line typed after an abandoned
// question goes to the next one.
type consolePrompt struct {
	in    *bufio.Reader
	out   io.Writer
	start sync.Once
	lines chan answer
}

type answer struct {
	line string
	err  error
}

func newConsolePrompt(in io.Reader, out io.Writer) *consolePrompt {
	return &consolePrompt{in: bufio.NewReader(in), out: out, lines: make(chan answer)}
}

func (p *consolePrompt) read() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		p.lines <- answer{line: strings.TrimSpace(line), err: err}
		if err != nil {
			return
		}
	}
}

// ask prints question and returns the trimmed answer.
func (p *consolePrompt) ask(ctx context.Context, question string) (string, error) {
	_, _ = fmt.Fprint(p.out, question)
	p.start.Do(func() { go p.read() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a, ok := <-p.lines:
		if !ok {
			return "", fmt.Errorf("failed to read answer: %w", io.EOF)
		}
		if a.err != nil {
			return "", fmt.Errorf("failed to read answer: %w", a.err)
		}
		return a.line, nil
	}
}

// RequestCode asks for the two-factor code. It waits as long as it takes.
func (p *consolePrompt) RequestCode(ctx context.Context) (string, error) {
	return p.ask(ctx, "Enter the verification code you received: ")
}

// Company asks until a non-blank company is entered.
func (p *consolePrompt) Company(ctx context.Context) (string, error) {
	for {
		company, err := p.ask(ctx, "Enter the company to search for (e.g. 'breakline'): ")
		if err != nil {
			return "", err
		}
		if company != "" {
			return company, nil
		}
		_, _ = fmt.Fprintln(p.out, "Company cannot be blank.")
	}
}
