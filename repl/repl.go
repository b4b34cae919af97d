// Package repl implements the interactive Read-Eval-Print Loop for
// Luna: a readline-driven input loop with colorized banner and error
// reporting, running each line through the lexer/parser/vm pipeline.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/lunalang/luna/errs"
	"github.com/lunalang/luna/lexer"
	"github.com/lunalang/luna/parser"
	"github.com/lunalang/luna/stdlib"
	"github.com/lunalang/luna/vm"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the banner/prompt configuration for an interactive session.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string
}

// NewRepl builds a Repl with the given display configuration.
func NewRepl(banner string, version string, author string, line string, license string, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

// PrintBannerInfo prints the startup banner and usage hints to writer.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Welcome to Luna!")
	cyanColor.Fprintf(writer, "%s\n", "Type your code and press enter")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the REPL main loop against a fresh interpreter seeded with
// the stdlib natives. One interpreter persists across the whole
// session, so globals and function/table registrations survive between
// lines.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.NewEx(&readline.Config{
		Prompt: r.Prompt,
		Stdin:  io.NopCloser(reader),
		Stdout: writer,
	})
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	interp := vm.New()
	interp.LoadLibrary(stdlib.New(writer))

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}
		if line == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		rl.SaveHistory(line)
		r.executeWithRecovery(writer, line, interp)
	}
}

// executeWithRecovery scans, parses and runs one line of input. Unlike
// file-execution mode, any error is reported and the loop continues
// rather than exiting.
func (r *Repl) executeWithRecovery(writer io.Writer, line string, interp *vm.Interpreter) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[RUNTIME ERROR] %v\n", recovered)
		}
	}()

	tokens, lexErrs := lexer.Scan(line)
	if len(lexErrs) > 0 {
		for _, e := range lexErrs {
			redColor.Fprintf(writer, "%s\n", e)
		}
		return
	}

	stmts, perr := parser.Parse(tokens)
	if perr != nil {
		redColor.Fprintf(writer, "%s\n", perr)
		return
	}

	if err := interp.Run(stmts); err != nil {
		reportError(writer, err)
	}
}

func reportError(writer io.Writer, err *errs.Error) {
	redColor.Fprintf(writer, "%s\n", err)
}
