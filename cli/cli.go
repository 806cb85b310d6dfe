// Package cli provides the plain line-mode front end: it reads commands,
// sends them to the session as UI requests and prints the resulting
// application events.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/nathoo/atelier/session"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Interp    *Interpreter
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given session.
func New(s *session.Session) *CLI {
	return &CLI{
		Interp: NewInterpreter(s),
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run shows the intro, then loops: prompt, input, dispatch, output. It
// returns on /quit or end of input.
func (c *CLI) Run() {
	defer c.Interp.Close()
	c.printLines(c.Interp.Intro())

	scanner := bufio.NewScanner(c.In)
	for {
		c.printLines(c.Interp.Drain())
		c.print("> ")
		if !scanner.Scan() {
			c.printLine("")
			return
		}
		input := scanner.Text()
		if c.EchoInput {
			c.printLine(input)
		}
		out, quit := c.Interp.Exec(input)
		c.printLines(out)
		if quit {
			return
		}
	}
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}
