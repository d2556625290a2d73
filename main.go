// Command golox runs the Lox interpreter, either as a REPL, against a
// source file, or against a command string passed with -c.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/chzyer/readline"

	"github.com/nrobinson/golox/ast"
	"github.com/nrobinson/golox/interpreter"
	"github.com/nrobinson/golox/loxerr"
	"github.com/nrobinson/golox/parser"
	"github.com/nrobinson/golox/resolver"
)

const (
	exitDataErr    = 65 // EX_DATAERR: parse or resolve error
	exitSoftware   = 70 // EX_SOFTWARE: runtime error
	exitUsageError = 64 // EX_USAGE: bad command line
)

var (
	cmd      = flag.String("c", "", "Program passed in as a string")
	printAST = flag.Bool("p", false, "Print the parsed AST instead of evaluating it")

	cpuProfile = flag.String("cpuprofile", "", "Write a CPU profile to the given file before exiting")
	memProfile = flag.String("memprofile", "", "Write an allocation profile to the given file before exiting")
	traceFile  = flag.String("trace", "", "Write an execution trace to the given file before exiting")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: golox [options] [script]\n\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	stopProfiling := startProfiling()
	defer stopProfiling()

	if *cmd != "" {
		exitCode, err := run(*cmd, interpreter.New())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode)
	}

	switch flag.NArg() {
	case 0:
		if err := runREPL(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitSoftware)
		}
	case 1:
		os.Exit(runFile(flag.Arg(0)))
	default:
		usage()
		os.Exit(exitUsageError)
	}
}

func startProfiling() (stop func()) {
	var stops []func()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("failed to create CPU profile: %s", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("failed to start CPU profile: %s", err)
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatalf("failed to create memory profile: %s", err)
		}
		stops = append(stops, func() {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatalf("failed to write memory profile: %s", err)
			}
			f.Close()
		})
	}
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			log.Fatalf("failed to create trace output file: %s", err)
		}
		if err := trace.Start(f); err != nil {
			log.Fatalf("failed to start trace: %s", err)
		}
		stops = append(stops, func() {
			trace.Stop()
			f.Close()
		})
	}

	return func() {
		for _, s := range stops {
			s()
		}
	}
}

// run scans, parses, resolves and evaluates src, returning the process exit
// code the CLI contract (spec §6) assigns to the outcome.
func run(src string, interp *interpreter.Interpreter) (int, error) {
	stmts, err := parser.Parse(src)
	if *printAST {
		ast.Print(stmts)
		if err != nil {
			return exitDataErr, err
		}
		return 0, nil
	}
	if err != nil {
		return exitDataErr, err
	}

	locals, err := resolver.Resolve(stmts)
	if err != nil {
		return exitDataErr, err
	}

	if err := interp.Interpret(stmts, locals); err != nil {
		if loxErr, ok := err.(*loxerr.Error); ok && loxErr.Runtime {
			if trace := interp.StackTrace(); trace != "" {
				fmt.Fprintln(os.Stderr, trace)
			}
		}
		return exitSoftware, err
	}
	return 0, nil
}

func runREPL() error {
	cfg := &readline.Config{Prompt: ">>> "}

	if homeDir, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = path.Join(homeDir, ".lox_history")
	} else {
		fmt.Fprintf(os.Stderr, "Can't get current user's home directory (%s). Command history will not be saved.\n", err)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return fmt.Errorf("starting REPL: %s", err)
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, "Welcome to Lox!")

	interp := interpreter.New(interpreter.REPLMode())
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("reading line: %s", err)
		}
		if _, err := run(line, interp); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return nil
}

func runFile(name string) int {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitSoftware
	}
	exitCode, err := run(string(src), interpreter.New())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return exitCode
}
