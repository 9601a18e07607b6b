// Package main implements the probec command, the type-checking front end
// for the probe language.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/you-not-fish/probec/internal/btf"
	"github.com/you-not-fish/probec/internal/compiler"
	"github.com/you-not-fish/probec/internal/config"
	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/passes"
)

// Version information
const Version = "0.1.0-dev"

var (
	configPath       string
	btfPath          string
	verbose          bool
	maxIterations    int
	colorFlag        string
	dumpBefore       string
	dumpAfter        string
	verifyAST        bool
	warningsAsErrors bool

	cfg    *config.Config
	logger *zap.Logger
)

// errFailed is returned when the program had errors that were already
// reported as diagnostics.
var errFailed = errors.New("compilation failed")

// newRootCmd builds the command tree. Flags are bound to the package
// variables above.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "probec",
		Short: "probec - type checker for probe scripts",
		Long: `probec parses probe scripts and infers the type of every variable,
map key, map value and expression, reporting mismatches as diagnostics.

Kernel struct layouts are read from a YAML database given with --btf
or the types.btf configuration setting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(cmd)
			if err != nil {
				return err
			}

			zcfg := zap.NewProductionConfig()
			zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel())
			if verbose {
				zcfg = zap.NewDevelopmentConfig()
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "probec.yaml", "configuration file")
	pf.StringVar(&btfPath, "btf", "", "kernel struct database (YAML)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.IntVar(&maxIterations, "max-iterations", 0, "type resolution iteration limit")
	pf.StringVar(&colorFlag, "color", "", "diagnostic colors: auto, always or never")
	pf.StringVar(&dumpBefore, "dump-before", "", "dump the AST before pass (name or \"*\")")
	pf.StringVar(&dumpAfter, "dump-after", "", "dump the AST after pass (name or \"*\")")
	pf.BoolVar(&verifyAST, "verify", false, "verify the AST around each pass")
	pf.BoolVar(&warningsAsErrors, "warnings-as-errors", false, "treat warnings as errors")

	root.AddCommand(newCheckCmd(), newTypesCmd(), newASTCmd(), newTokensCmd(), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "probec: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies the flags that
// were set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("btf") {
		c.Types.BTF = btfPath
	}
	if flags.Changed("max-iterations") {
		c.Resolver.MaxIterations = maxIterations
	}
	if flags.Changed("color") {
		c.Diagnostics.Color = colorFlag
	}
	if flags.Changed("warnings-as-errors") {
		c.Diagnostics.WarningsAsErrors = warningsAsErrors
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// compilerOptions builds the compile options from the loaded
// configuration. The struct database is loaded here when one is
// configured.
func compilerOptions(dump io.Writer) (compiler.Options, error) {
	opts := compiler.Options{
		MaxIterations:    cfg.Resolver.MaxIterations,
		WarningsAsErrors: cfg.Diagnostics.WarningsAsErrors,
		Passes: passes.Config{
			DumpBefore: dumpBefore,
			DumpAfter:  dumpAfter,
			Dump:       dump,
			Verify:     verifyAST,
		},
		Logger: logger,
	}
	if cfg.Types.BTF != "" {
		db, err := btf.LoadFile(cfg.Types.BTF)
		if err != nil {
			return opts, err
		}
		logger.Debug("loaded kernel structs",
			zap.String("path", cfg.Types.BTF),
			zap.Int("structs", len(db.Names())))
		opts.Oracle = db
	}
	return opts, nil
}

// compile compiles the named file and writes its diagnostics to stderr.
func compile(cmd *cobra.Command, filename string) (*compiler.Result, error) {
	opts, err := compilerOptions(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	res, err := compiler.CompileFile(filename, opts)
	if err != nil {
		return nil, err
	}
	if err := res.Diags.EmitColor(cmd.ErrOrStderr(), cfg.ColorMode()); err != nil {
		return nil, err
	}
	return res, nil
}

// summary prints the error and warning counts, if any.
func summary(w io.Writer, ds *diag.Diagnostics) {
	errs, warns := len(ds.Errors()), len(ds.Warnings())
	if errs+warns == 0 {
		return
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
}
