package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// consolePrompter is the line-mode retry.Prompter used outside the picker:
// progress goes to out and retry questions are read from in.
type consolePrompter struct {
	out io.Writer

	mu sync.Mutex
	in *bufio.Reader
	// noRetry answers every retry question with "no" without asking.
	noRetry bool
}

func newConsolePrompter(in io.Reader, out io.Writer, noRetry bool) *consolePrompter {
	return &consolePrompter{out: out, in: bufio.NewReader(in), noRetry: noRetry}
}

func (p *consolePrompter) Progress(ctx context.Context, title string, fn func(ctx context.Context) string) string {
	fmt.Fprintf(p.out, "%s…\n", title)
	return fn(ctx)
}

func (p *consolePrompter) ConfirmRetry(ctx context.Context, message string) bool {
	if p.noRetry {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s [y/N] ", message)
	answer := make(chan string, 1)
	go func() {
		line, _ := p.in.ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return false
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "r", "retry":
			return true
		default:
			return false
		}
	}
}
