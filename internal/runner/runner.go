package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codvm/internal/config"
	"codvm/pkg/bytecode"
	"codvm/pkg/color"
	"codvm/pkg/console"
	"codvm/pkg/lexer"
	"codvm/pkg/loader"
	"codvm/pkg/program"
	"codvm/pkg/vm"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ImageExt marks a file as a CBOR program image rather than bytecode text
const ImageExt = ".cbi"

type Runner struct {
	Help       bool   // Show help message
	Verbose    bool   // Enable verbose output
	NoColor    bool   // Disable colored output
	Quiet      bool   // Start with tracing off
	CheckOnly  bool   // Load and resolve without running
	MaxSteps   int    // Step budget, 0 for the config value or unlimited
	ConfigFile string // Explicit config file, otherwise searched for
	SourceFile string // Path to the .cod or .cbi file
	ImageOut   string // Where to write a program image, if set

	Input  io.Reader // READ source, stdin when nil
	Output io.Writer // WRITE, trace and listing destination, stdout when nil

	cfg *config.Config
}

// Configure loads the config file and fills unset options from it. Run calls
// it when the caller has not.
func (opts *Runner) Configure() error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	opts.cfg = cfg
	opts.merge(cfg)
	return nil
}

// Run loads the source file, resolves it and executes it on a fresh VM
func (opts *Runner) Run() error {
	if opts.cfg == nil {
		if err := opts.Configure(); err != nil {
			return err
		}
	}
	cfg := opts.cfg

	if opts.NoColor {
		color.EnableColor(false)
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	logger := log.Default().With("run", uuid.NewString())
	logger.Info("Processing file", "file", opts.SourceFile, "config", cfg.Path)

	prog, err := opts.load(out)
	if err != nil {
		return err
	}

	if opts.Verbose {
		fmt.Fprintln(out, color.GreenText("=== Resolved Program ==="))
		Listing(out, prog)
	}

	if opts.ImageOut != "" {
		data, err := program.MarshalImage(prog)
		if err != nil {
			return fmt.Errorf("image encoding failed: %w", err)
		}
		if err := os.WriteFile(opts.ImageOut, data, 0o644); err != nil {
			return fmt.Errorf("cannot write %s: %w", opts.ImageOut, err)
		}
		logger.Info("Wrote program image", "file", opts.ImageOut, "bytes", len(data))
	}

	if opts.CheckOnly {
		return nil
	}

	var in console.IntReader
	if opts.Input != nil {
		in = console.NewPromptReader(opts.Input, out, cfg.Prompt)
	} else {
		in = console.NewReader(os.Stdin, out, cfg.Prompt, cfg.LineEditing)
	}
	defer in.Close()

	machine := vm.New(prog,
		vm.WithReader(in),
		vm.WithWriter(console.NewLineWriter(out)),
		vm.WithTrace(out),
		vm.WithDumping(!opts.Quiet),
		vm.WithMaxSteps(opts.MaxSteps),
		vm.WithLogger(logger),
	)

	if opts.Verbose {
		fmt.Fprintln(out, color.GreenText("\n=== Program Output ==="))
	}
	if err := machine.Run(); err != nil {
		logger.Error("Execution failed", "pc", machine.PC(), "steps", machine.Steps())
		return fmt.Errorf("execution failed: %w", err)
	}

	logger.Debug("Execution finished", "steps", machine.Steps())
	return nil
}

func (opts *Runner) config() (*config.Config, error) {
	if opts.ConfigFile != "" {
		return config.Load(opts.ConfigFile)
	}
	return config.FindAndLoad(filepath.Dir(opts.SourceFile))
}

// merge fills unset flags from the config file
func (opts *Runner) merge(cfg *config.Config) {
	opts.Verbose = opts.Verbose || cfg.Verbose
	opts.NoColor = opts.NoColor || cfg.NoColor
	opts.Quiet = opts.Quiet || !cfg.Trace
	if opts.MaxSteps == 0 {
		opts.MaxSteps = cfg.MaxSteps
	}
}

func (opts *Runner) load(out io.Writer) (*program.Program, error) {
	input, err := os.ReadFile(opts.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", opts.SourceFile, err)
	}

	if strings.EqualFold(filepath.Ext(opts.SourceFile), ImageExt) {
		prog, err := program.UnmarshalImage(input)
		if err != nil {
			return nil, fmt.Errorf("cannot load image %s: %w", opts.SourceFile, err)
		}
		return prog, nil
	}

	ld := loader.NewLoader(lexer.NewLexer(string(input)))
	b := ld.Load()

	if syntaxErrors := ld.Errors(); len(syntaxErrors) > 0 {
		fmt.Fprintln(out, color.BrightRedText("=== Syntax Errors ==="))
		for _, e := range syntaxErrors {
			fmt.Fprintln(out, e.Pretty())
		}
		return nil, fmt.Errorf("loading failed with %d errors: %w", len(syntaxErrors), syntaxErrors[0])
	}

	prog, err := b.Resolve()
	if err != nil {
		return nil, fmt.Errorf("label resolution failed: %w", err)
	}
	return prog, nil
}

// Listing prints one numbered instruction per line, with resolved jump targets
func Listing(out io.Writer, prog *program.Program) {
	if prog.Len() == 0 {
		fmt.Fprintln(out, color.GrayText("No instructions."))
		return
	}

	for i, in := range prog.Instructions() {
		line := color.CyanText(fmt.Sprintf("%d", i)) + ": " + color.YellowText(string(in.Opcode()))
		if args := in.Args(); len(args) > 0 {
			line += " " + color.BlueText(strings.Join(args, " "))
		}
		if _, ok := in.(bytecode.Jump); ok {
			line += color.GrayText(fmt.Sprintf(" -> %d", prog.Target(i)))
		}
		fmt.Fprintln(out, line)
	}
}
