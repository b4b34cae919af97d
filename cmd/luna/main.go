// Command luna is the entry point for the Luna interpreter: an
// interactive REPL, a file-execution mode, a TCP REPL server, and
// --help/--version. Argument dispatch is plain os.Args switching; the
// whole CLI surface is four fixed forms, not enough to justify a
// flag-parsing library.
package main

import (
	"net"
	"os"

	"github.com/fatih/color"

	"github.com/lunalang/luna/lexer"
	"github.com/lunalang/luna/parser"
	"github.com/lunalang/luna/repl"
	"github.com/lunalang/luna/stdlib"
	"github.com/lunalang/luna/vm"
)

var (
	VERSION = "v0.1.0"
	AUTHOR  = "lunalang"
	LICENCE = "MIT"
	PROMPT  = "Luna >>> "
	LINE    = "----------------------------------------------------------------"
	BANNER  = `
   _
  | |    _   _ _ __   __ _
  | |   | | | | '_ \ / _' |
  | |___| |_| | | | | (_| |
  |_____|\__,_|_| |_|\__,_|
`
)

var (
	redColor    = color.New(color.FgRed)
	yellowColor = color.New(color.FgYellow)
	cyanColor   = color.New(color.FgCyan)
)

func main() {
	if len(os.Args) > 1 {
		arg := os.Args[1]

		switch arg {
		case "--help", "-h":
			showHelp()
			os.Exit(0)
		case "--version", "-v":
			showVersion()
			os.Exit(0)
		case "server":
			if len(os.Args) < 3 {
				redColor.Fprintf(os.Stderr, "[USAGE ERROR] Missing port for server mode. Usage: luna server <port>\n")
				os.Exit(1)
			}
			startServer(os.Args[2])
			return
		}

		runFile(arg)
		return
	}

	repler := repl.NewRepl(BANNER, VERSION, AUTHOR, LINE, LICENCE, PROMPT)
	repler.Start(os.Stdin, os.Stdout)
}

func showHelp() {
	cyanColor.Println("Luna - a small interpreted scripting language")
	cyanColor.Println("")
	cyanColor.Println("USAGE:")
	yellowColor.Println("  luna                    Start interactive REPL mode")
	yellowColor.Println("  luna <path-to-file>     Execute a Luna source file")
	yellowColor.Println("  luna server <port>      Start REPL server on specified port")
	yellowColor.Println("  luna --help             Display this help message")
	yellowColor.Println("  luna --version          Display version information")
}

func showVersion() {
	cyanColor.Println("Luna - a small interpreted scripting language")
	cyanColor.Printf("Version: %s\n", VERSION)
	cyanColor.Printf("License: %s\n", LICENCE)
}

// runFile reads and executes a single Luna source file in a fresh
// interpreter, exiting non-zero on any lexical, parse, or runtime
// error.
func runFile(fileName string) {
	fileContent, err := os.ReadFile(fileName)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] Could not read file '%s': %v\n", fileName, err)
		os.Exit(1)
	}

	executeFileWithRecovery(string(fileContent))
}

func executeFileWithRecovery(source string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(os.Stderr, "[RUNTIME ERROR] %v\n", recovered)
			os.Exit(1)
		}
	}()

	tokens, lexErrs := lexer.Scan(source)
	if len(lexErrs) > 0 {
		for _, e := range lexErrs {
			redColor.Fprintf(os.Stderr, "[LEXICAL ERROR] %s\n", e)
		}
		os.Exit(1)
	}

	stmts, perr := parser.Parse(tokens)
	if perr != nil {
		redColor.Fprintf(os.Stderr, "[PARSE ERROR] %s\n", perr)
		os.Exit(1)
	}

	interp := vm.New()
	interp.LoadLibrary(stdlib.New(os.Stdout))
	if err := interp.Run(stmts); err != nil {
		redColor.Fprintf(os.Stderr, "[RUNTIME ERROR] %s\n", err)
		os.Exit(1)
	}
}

// startServer listens on port and hands each TCP connection its own
// Luna REPL session.
func startServer(port string) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[SERVER ERROR] Failed to start server on port %s: %v\n", port, err)
		os.Exit(1)
	}
	cyanColor.Printf("Luna REPL server listening on :%s\n", port)
	defer listener.Close()

	for {
		conn, err := listener.Accept()
		if err != nil {
			redColor.Fprintf(os.Stderr, "[SERVER ERROR] Failed to accept connection: %v\n", err)
			continue
		}
		go handleClient(conn)
	}
}

func handleClient(conn net.Conn) {
	defer conn.Close()
	cyanColor.Printf("New client connected from %s\n", conn.RemoteAddr())
	repler := repl.NewRepl(BANNER, VERSION, AUTHOR, LINE, LICENCE, PROMPT)
	repler.Start(conn, conn)
	cyanColor.Printf("Client disconnected from %s\n", conn.RemoteAddr())
}
