package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/you-not-fish/probec/internal/compiler"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types2"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Type check a probe script and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := compile(cmd, args[0])
			if err != nil {
				return err
			}
			summary(cmd.ErrOrStderr(), res.Diags)
			if !res.Ok() {
				return errFailed
			}
			return nil
		},
	}
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types FILE",
		Short: "Print the inferred type of every variable and map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := compile(cmd, args[0])
			if err != nil {
				return err
			}
			if res.Types == nil {
				return errFailed
			}
			printTypes(cmd, res)
			if !res.Ok() {
				return errFailed
			}
			return nil
		},
	}
}

// printTypes writes one line per variable, map key and map value. The
// implicit key of a scalar map is left out.
func printTypes(cmd *cobra.Command, res *compiler.Result) {
	rt := res.Types
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-24s %-8s %-6s %s\n", "NAME", "KIND", "LOCKED", "TYPE")
	fmt.Fprintf(w, "%-24s %-8s %-6s %s\n", strings.Repeat("-", 24), strings.Repeat("-", 8), strings.Repeat("-", 6), strings.Repeat("-", 20))
	for _, v := range rt.Vars() {
		if v.Kind == types2.VarMapKey && res.Maps.Scalar[v.Name] {
			continue
		}
		t, _ := rt.Lookup(v)
		locked := ""
		if rt.IsLocked(v) {
			locked = "yes"
		}
		fmt.Fprintf(w, "%-24s %-8s %-6s %s\n", v, kindName(v.Kind), locked, t)
	}
}

func kindName(k types2.VarKind) string {
	switch k {
	case types2.VarLocal:
		return "var"
	case types2.VarMapKey:
		return "map key"
	case types2.VarMapValue:
		return "map"
	}
	return "expr"
}

func newASTCmd() *cobra.Command {
	var (
		typed  bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "ast FILE",
		Short: "Print the syntax tree of a probe script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid --format %q (want text or json)", format)
			}
			res, err := compileForAST(cmd, args[0], typed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				if err := syntax.FprintJSON(out, res.prog); err != nil {
					return err
				}
			default:
				syntax.Fprint(out, res.prog)
			}
			if !res.ok {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&typed, "typed", false, "resolve types and annotate expressions")
	cmd.Flags().StringVar(&format, "format", "text", "output format (text or json)")
	return cmd
}

type astResult struct {
	prog *syntax.Program
	ok   bool
}

// compileForAST parses filename, and with typed set also runs the typing
// passes over it.
func compileForAST(cmd *cobra.Command, filename string, typed bool) (astResult, error) {
	if typed {
		res, err := compile(cmd, filename)
		if err != nil {
			return astResult{}, err
		}
		return astResult{prog: res.Program, ok: res.Ok()}, nil
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return astResult{}, err
	}
	errOut := cmd.ErrOrStderr()
	errh := func(pos syntax.Pos, msg string) {
		fmt.Fprintf(errOut, "%s: %s\n", pos, msg)
	}
	prog, err := syntax.Parse(filename, string(src), errh)
	return astResult{prog: prog, ok: err == nil}, nil
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the token stream of a probe script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTokens(cmd, args[0])
		},
	}
}

// printTokens scans filename and prints all tokens with positions.
func printTokens(cmd *cobra.Command, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	var errs []string
	errh := func(pos syntax.Pos, msg string) {
		errs = append(errs, fmt.Sprintf("%s: %s", pos, msg))
	}
	s := syntax.NewScanner(filename, f, errh)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-20s %-12s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Fprintf(w, "%-20s %-12s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 20))
	for {
		s.Next()
		tok := s.Token()
		fmt.Fprintf(w, "%-20s %-12s %s\n", s.Pos(), tok, formatLiteral(s.Literal()))
		if tok.IsEOF() {
			break
		}
	}

	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), e)
		}
		return errFailed
	}
	return nil
}

// formatLiteral quotes a literal for display, escaping special characters.
func formatLiteral(lit string) string {
	if lit == "" {
		return `""`
	}
	var b strings.Builder
	b.WriteRune('"')
	for _, r := range lit {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune('"')
	return b.String()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "probec version %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "go version %s\n", runtime.Version())
		},
	}
}
