// Command lox is the CLI entry point for the Lox interpreter.
//
// Usage:
//
//	lox tokens <file>            Print tokens
//	lox tokens <file> --json     Print tokens as JSON
//	lox parse  <file>            Print AST as JSON
//	lox run    <file>            Run a source file
//	lox repl                     Start interactive REPL
package main

import (
	"fmt"
	"os"

	"golox/internal/ast"
	"golox/internal/lexer"
	"golox/internal/parser"
	"golox/internal/resolver"
	"golox/internal/runtime"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "tokens":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		jsonMode := hasFlag("--json")
		cmdTokens(source, os.Args[2], jsonMode)
	case "parse":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		cmdParse(source, os.Args[2])
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		cmdRun(source, os.Args[2])
	case "repl":
		cmdRepl()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lox tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  lox parse  <file>            Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  lox run    <file>            Run a source file")
	fmt.Fprintln(os.Stderr, "  lox repl                     Start interactive REPL")
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[3:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) {
	l := lexer.New(source, filename)
	tokens, diags := l.Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
}

// ---- parse command ----

func cmdParse(source, filename string) {
	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		printDiagsText(lexDiags)
		os.Exit(1)
	}

	p := parser.New(tokens)
	stmts, parseDiags := p.ParseProgram()
	if len(parseDiags) > 0 {
		printDiagsText(parseDiags)
		os.Exit(1)
	}

	program := make([]interface{}, len(stmts))
	for i, s := range stmts {
		program[i] = ast.NodeToMap(s)
	}
	printJSON(map[string]interface{}{"program": program})
}

// ---- run command ----

// cmdRun executes a source file through the full pipeline. Each phase
// gates the next: any diagnostic stops before evaluation begins.
func cmdRun(source, filename string) {
	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		printDiagsText(lexDiags)
		os.Exit(1)
	}

	p := parser.New(tokens)
	stmts, parseDiags := p.ParseProgram()
	if len(parseDiags) > 0 {
		printDiagsText(parseDiags)
		os.Exit(1)
	}

	table, resolveDiags := resolver.Resolve(stmts)
	if len(resolveDiags) > 0 {
		printDiagsText(resolveDiags)
		os.Exit(1)
	}

	interp := runtime.NewInterpreter(os.Stdout)
	if err := interp.Run(stmts, table); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(70)
	}
}
