package search

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type line struct {
	text string
	err  error
}

// Console prompts on out and reads answers line by line from in.
// A single goroutine owns in, so a prompt can be abandoned when ctx is cancelled.
type Console struct {
	in    *bufio.Reader
	out   io.Writer
	lines chan line
	once  sync.Once
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan line),
	}
}

func (c *Console) Out() io.Writer {
	return c.out
}

// Printf writes to the console output
func (c *Console) Printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Ask prints prompt and returns the next input line without its line ending
func (c *Console) Ask(ctx context.Context, prompt string) (string, error) {
	if _, err := io.WriteString(c.out, prompt); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	c.once.Do(func() { go c.read() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-c.lines:
		if !ok {
			return "", fmt.Errorf("reading input: %w", io.EOF)
		}
		if l.err != nil {
			return "", fmt.Errorf("reading input: %w", l.err)
		}
		return l.text, nil
	}
}

func (c *Console) read() {
	defer close(c.lines)
	for {
		text, err := c.in.ReadString('\n')
		if text != "" || err == nil {
			c.lines <- line{text: strings.TrimRight(text, "\r\n")}
		}
		if err != nil {
			if err != io.EOF {
				c.lines <- line{err: err}
			}
			return
		}
	}
}
