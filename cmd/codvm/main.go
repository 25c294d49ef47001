package main

import (
	"flag"
	"fmt"
	"os"

	"codvm/internal/logger"
	"codvm/internal/runner"
	"codvm/pkg/color"

	"github.com/charmbracelet/log"
)

// Main entry point for the codvm bytecode interpreter.
func main() {
	options := runner.Runner{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.Quiet, "quiet", false, "Do not trace until a DUMP ON instruction")
	flag.BoolVar(&options.CheckOnly, "check", false, "Load and resolve the program without running it")
	flag.IntVar(&options.MaxSteps, "max-steps", 0, "Abort after this many instructions (0 = unlimited)")
	flag.StringVar(&options.ConfigFile, "config", "", "Config file (default: nearest codvm.toml or codvm.yaml)")
	flag.StringVar(&options.ImageOut, "emit", "", "Write the resolved program as a CBOR image")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <file.cod|file%s>\n", os.Args[0], runner.ImageExt)
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.SourceFile = args[0]
	if err := options.Configure(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	logger.Init(options.Verbose, options.NoColor)

	if err := options.Run(); err != nil {
		log.Fatal("Run failed", "error", err)
	}
}
