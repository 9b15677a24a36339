package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
)

// console feeds lines typed at a prompt into the transmitter.
type console struct {
	rl *readline.Instance
}

// newConsole reads lines from in and echoes to out. Line editing is only
// enabled when in is a terminal; pipes are read line by line.
func newConsole(in io.Reader, out io.Writer) (*console, error) {
	isTerminal := func() bool { return false }
	if f, ok := in.(*os.File); ok {
		isTerminal = func() bool { return readline.IsTerminal(int(f.Fd())) }
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "usart0> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           io.NopCloser(in),
		Stdout:          out,
		FuncIsTerminal:  isTerminal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &console{rl: rl}, nil
}

// Stdout returns a writer that does not clobber the prompt. The simulated
// transmitter writes here.
func (c *console) Stdout() io.Writer { return c.rl.Stdout() }

func (c *console) Close() error { return c.rl.Close() }

// Run transmits each line, newline-terminated, until EOF. It stops at the
// first transmit error.
func (c *console) Run(tx io.StringWriter) error {
	for {
		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return nil
		}
		if _, err := tx.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("transmit: %w", err)
		}
	}
}
