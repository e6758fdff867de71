package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/funvibe/vela/internal/backend"
	"github.com/funvibe/vela/internal/config"
	"github.com/funvibe/vela/internal/logging"
	"github.com/funvibe/vela/internal/pipeline"
	"github.com/funvibe/vela/internal/vm"
)

const usageText = `Usage:
  vela                      start the REPL
  vela <file>               run a source or compiled chunk file
  vela -c <file> [-o <out>] compile a source file to a chunk file
  vela -r <file.vbc>        run a compiled chunk file
  vela -d <file>            print the disassembly of a file

Options:
  -trace            trace execution to stderr
  -config <path>    read settings from path
  -v <n>            log verbosity (0 errors .. 4 debug)
  -h, -help         show this help
`

type mode int

const (
	modeREPL mode = iota
	modeRun
	modeCompile
	modeRunCompiled
	modeDisassemble
	modeHelp
)

type options struct {
	mode       mode
	path       string
	output     string
	configPath string
	trace      bool
	verbosity  int // -1 keeps the configured value
}

// app holds the streams and settings of one invocation
type app struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool // stdin is a terminal: show the REPL prompt
	color       bool // stderr accepts ANSI colors

	settings *config.Settings
}

func main() {
	// Catch engine invariant panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			// Print stack trace for debugging
			if os.Getenv(config.EnvDebug) == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(config.ExitRuntimeError)
		}
	}()

	a := &app{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: isTerminal(os.Stdin),
		color:       colorEnabled(os.Stderr),
	}
	if code := a.run(os.Args[1:]); code != 0 {
		os.Exit(code)
	}
}

func parseArgs(args []string) (*options, error) {
	opts := &options{mode: modeRun, verbosity: -1}
	var positional []string

	next := func(i *int, flag string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("flag %s needs an argument", flag)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var err error
		switch arg {
		case "-h", "-help", "--help", "help":
			opts.mode = modeHelp
			return opts, nil
		case "-c", "--compile":
			opts.mode = modeCompile
			opts.path, err = next(&i, arg)
		case "-r", "--run":
			opts.mode = modeRunCompiled
			opts.path, err = next(&i, arg)
		case "-d", "--disassemble":
			opts.mode = modeDisassemble
			opts.path, err = next(&i, arg)
		case "-o":
			opts.output, err = next(&i, arg)
		case "-config", "--config":
			opts.configPath, err = next(&i, arg)
		case "-trace", "--trace":
			opts.trace = true
		case "-v":
			var v string
			if v, err = next(&i, arg); err == nil {
				opts.verbosity, err = strconv.Atoi(v)
				if err == nil && opts.verbosity < 0 {
					err = fmt.Errorf("verbosity must not be negative")
				}
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag %s", arg)
			}
			positional = append(positional, arg)
		}
		if err != nil {
			return nil, err
		}
	}

	switch {
	case opts.path != "" && len(positional) > 0:
		return nil, fmt.Errorf("unexpected argument %s", positional[0])
	case opts.path == "" && len(positional) > 1:
		return nil, fmt.Errorf("unexpected argument %s", positional[1])
	case opts.path == "" && len(positional) == 1:
		opts.path = positional[0]
	case opts.path == "":
		opts.mode = modeREPL
	}
	if opts.output != "" && opts.mode != modeCompile {
		return nil, fmt.Errorf("-o is only valid with -c")
	}
	return opts, nil
}

// run executes one invocation and returns the process exit code
func (a *app) run(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %s\n\n%s", err, usageText)
		return config.ExitUsage
	}
	if opts.mode == modeHelp {
		fmt.Fprint(a.stdout, usageText)
		return 0
	}

	settings, err := config.Resolve(opts.configPath, ".")
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %s\n", err)
		return config.ExitIOError
	}
	if opts.trace {
		settings.TraceExecution = true
	}
	if opts.verbosity >= 0 {
		settings.Log.Verbosity = opts.verbosity
	}
	a.settings = settings
	logging.Configure(settings.Log.Verbosity, settings.Log.File)
	if settings.Path != "" {
		logging.Get("config").Debugf("settings from %s", settings.Path)
	}

	switch opts.mode {
	case modeREPL:
		return a.repl()
	case modeCompile:
		return a.compileFile(opts.path, opts.output)
	case modeRunCompiled:
		return a.runCompiled(opts.path)
	case modeDisassemble:
		return a.disassembleFile(opts.path)
	default:
		return a.runFile(opts.path)
	}
}

func (a *app) newBackend() *backend.VMBackend {
	b := backend.NewVM(a.settings)
	if a.settings.TraceExecution {
		b.SetTraceOutput(a.stderr)
	} else {
		b.SetTraceOutput(nil)
	}
	return b
}

// load reads path into a pipeline context. Chunk files are decoded up front
// so the compiler stage skips them.
func (a *app) load(path string, requireChunk bool) (*pipeline.PipelineContext, int) {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.stderr, "Could not open file \"%s\".\n", path)
		return nil, config.ExitIOError
	}

	ctx := pipeline.NewPipelineContext(string(content))
	ctx.FilePath = path

	if !vm.IsChunkFile(content) {
		if requireChunk {
			fmt.Fprintf(a.stderr, "Error: %s is not a compiled chunk file\n", path)
			return nil, config.ExitIOError
		}
		return ctx, 0
	}

	f, err := vm.DeserializeChunkFile(content)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error loading %s: %s\n", path, err)
		return nil, config.ExitIOError
	}
	logging.Get("chunk").Infof("loaded %s (build %s)", path, f.BuildID)
	ctx.Chunk = f.Chunk()
	return ctx, 0
}

// execute runs the pipeline, prints the value or the errors and maps the
// outcome to an exit code
func (a *app) execute(ctx *pipeline.PipelineContext, b *backend.VMBackend) int {
	p := pipeline.New(
		&backend.CompilerProcessor{PrintCode: a.settings.PrintCode, StackMax: a.settings.StackMax},
		backend.NewExecutionProcessor(b),
	)
	ctx = p.Run(ctx)

	if ctx.Failed() {
		a.printErrors(ctx)
		if ctx.HasRuntimeError() {
			return config.ExitRuntimeError
		}
		return config.ExitCompileError
	}
	fmt.Fprintln(a.stdout, ctx.Result.Inspect())
	return 0
}

func (a *app) printErrors(ctx *pipeline.PipelineContext) {
	for _, err := range ctx.Errors {
		fmt.Fprintln(a.stderr, paint(err.Error(), a.color))
	}
}

func (a *app) runFile(path string) int {
	ctx, code := a.load(path, false)
	if ctx == nil {
		return code
	}
	return a.execute(ctx, a.newBackend())
}

// runCompiled runs a pre-compiled .vbc chunk file
func (a *app) runCompiled(path string) int {
	ctx, code := a.load(path, true)
	if ctx == nil {
		return code
	}
	return a.execute(ctx, a.newBackend())
}

func (a *app) compileFile(sourcePath, outputPath string) int {
	sourceCode, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(a.stderr, "Could not open file \"%s\".\n", sourcePath)
		return config.ExitIOError
	}

	ctx := pipeline.NewPipelineContext(string(sourceCode))
	ctx.FilePath = sourcePath
	ctx = pipeline.New(&backend.CompilerProcessor{PrintCode: a.settings.PrintCode, StackMax: a.settings.StackMax}).Run(ctx)
	if ctx.Failed() {
		a.printErrors(ctx)
		return config.ExitCompileError
	}

	f := vm.NewChunkFile(ctx.Chunk)
	data, err := f.Serialize()
	if err != nil {
		fmt.Fprintf(a.stderr, "Serialization error: %s\n", err)
		return config.ExitIOError
	}

	if outputPath == "" {
		outputPath = config.TrimSourceExt(sourcePath)
		if outputPath == sourcePath {
			outputPath = strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
		}
		outputPath += config.CompiledFileExt
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		fmt.Fprintf(a.stderr, "Error writing bytecode file: %s\n", err)
		return config.ExitIOError
	}

	logging.Get("chunk").Infof("wrote %s (build %s)", outputPath, f.BuildID)
	fmt.Fprintf(a.stdout, "Compiled %s -> %s\n", sourcePath, outputPath)
	fmt.Fprintf(a.stdout, "Bytecode size: %d bytes\n", len(data))
	return 0
}

func (a *app) disassembleFile(path string) int {
	ctx, code := a.load(path, false)
	if ctx == nil {
		return code
	}

	b := a.newBackend()
	ctx = pipeline.New(
		&backend.CompilerProcessor{PrintCode: a.settings.PrintCode, StackMax: a.settings.StackMax},
		&backend.DisassembleProcessor{Backend: b, Out: a.stdout},
	).Run(ctx)
	if ctx.Failed() {
		a.printErrors(ctx)
		return config.ExitCompileError
	}
	return 0
}
