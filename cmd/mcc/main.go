// Command mcc is the compiler's command-line driver: it reads a
// program from its single positional argument, compiles it, and
// writes the resulting assembly to disk -- optionally assembling and
// running it too.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/birchlang/mcc/compiler"
	"github.com/birchlang/mcc/internal/config"
	"github.com/birchlang/mcc/source"
)

func main() {
	var (
		outPath    string
		debug      bool
		doCompile  bool
		doRun      bool
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:           "mcc <program>",
		Short:         "Compile a small C-like language to x86-64 assembly",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Any arity other than exactly one positional argument is
			// a silent, zero-status no-op.
			if len(args) != 1 {
				return nil
			}
			return run(args[0], outPath, debug, doCompile, doRun, verbose, configPath)
		},
	}

	root.Flags().StringVar(&outPath, "out", "", "path to write the generated assembly (default from config)")
	root.Flags().BoolVar(&debug, "debug", false, "emit an int3 trap after every function prologue")
	root.Flags().BoolVar(&doCompile, "compile", false, "assemble and link the generated output")
	root.Flags().BoolVar(&doRun, "run", false, "run the produced binary (implies --compile)")
	root.Flags().BoolVar(&verbose, "verbose", false, "log stage timings to stderr")
	root.Flags().StringVar(&configPath, "config", "", "path to the configuration file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(program, outPath string, debug, doCompile, doRun, verbose bool, configPath string) error {
	if doRun {
		doCompile = true
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = cfg.Build.OutputPath
	}

	ctx := source.New(program)

	start := time.Now()
	comp := compiler.New(program)
	comp.SetDebug(debug || cfg.Diagnostics.Debug)

	asm, cerr := comp.Compile()
	if cerr != nil {
		if ce, ok := cerr.(*source.CompileError); ok {
			fmt.Print(source.Render(ctx, ce.Message, ce.Pos))
			os.Exit(1)
		}
		return cerr
	}

	if verbose || cfg.Diagnostics.Verbose {
		fmt.Fprintf(os.Stderr, "mcc: compiled in %s\n", time.Since(start))
	}

	if err := os.WriteFile(outPath, []byte(asm), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	if !doCompile {
		return nil
	}

	assembleStart := time.Now()
	asmCmd := exec.Command(cfg.Build.Assembler, "-static", "-o", cfg.Build.BinaryPath, "-x", "assembler", "-")
	asmCmd.Stdin = strings.NewReader(asm)
	asmCmd.Stdout = os.Stdout
	asmCmd.Stderr = os.Stderr
	if err := asmCmd.Run(); err != nil {
		return fmt.Errorf("assembling %s: %w", outPath, err)
	}
	if verbose || cfg.Diagnostics.Verbose {
		fmt.Fprintf(os.Stderr, "mcc: assembled in %s\n", time.Since(assembleStart))
	}

	if !doRun {
		return nil
	}

	bin := exec.Command(cfg.Build.BinaryPath)
	bin.Stdin = os.Stdin
	bin.Stdout = os.Stdout
	bin.Stderr = os.Stderr
	runErr := bin.Run()
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		os.Exit(exitErr.ExitCode())
	}
	return runErr
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}
