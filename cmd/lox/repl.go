package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"golox/internal/diag"
	"golox/internal/lexer"
	"golox/internal/parser"
	"golox/internal/resolver"
	"golox/internal/runtime"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// ---- repl command ----

func cmdRepl() {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".lox_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + "lox> " + colorReset,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%slox REPL%s %s(type 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	// One interpreter for the whole session: globals survive across inputs,
	// and a failed input leaves already-committed state in place.
	interp := runtime.NewInterpreter(rl.Stdout())
	idBase := 0
	var accumulated strings.Builder
	braceDepth := 0

	for {
		if braceDepth > 0 {
			rl.SetPrompt(colorGray + "...  " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + "lox> " + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					// Cancel multi-line input
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if braceDepth == 0 && strings.TrimSpace(line) == "exit" {
			break
		}

		// Count braces for multi-line input
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()

		if strings.TrimSpace(source) == "" {
			continue
		}

		l := lexer.New(source, "<repl>")
		tokens, lexDiags := l.Tokenize()
		if len(lexDiags) > 0 {
			printDiagsColored(rl.Stderr(), lexDiags)
			continue
		}

		// Node IDs continue from the previous input so resolved depths
		// recorded for earlier closures stay valid.
		p := parser.NewAt(tokens, idBase)
		stmts, parseDiags := p.ParseProgram()
		if len(parseDiags) > 0 {
			printDiagsColored(rl.Stderr(), parseDiags)
			continue
		}
		idBase = p.LastID()

		table, resolveDiags := resolver.Resolve(stmts)
		if len(resolveDiags) > 0 {
			printDiagsColored(rl.Stderr(), resolveDiags)
			continue
		}

		if err := interp.Run(stmts, table); err != nil {
			fmt.Fprintf(rl.Stderr(), "%s%s%s\n", colorRed, err, colorReset)
			continue
		}
	}
}

// printDiagsColored prints diagnostics with red color for REPL display.
func printDiagsColored(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s%s\n", colorRed, d.String(), colorReset)
	}
}
