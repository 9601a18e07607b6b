package compiler

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/you-not-fish/probec/internal/btf"
	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/passes"
	"github.com/you-not-fish/probec/internal/syntax"
	"github.com/you-not-fish/probec/internal/types"
	"github.com/you-not-fish/probec/internal/types2"
)

func TestCompile(t *testing.T) {
	src := `kprobe:do_sys_open /pid > 100/ {
	@opens[comm] = count();
	$n = 1;
	@last = $n;
}`
	res, err := Compile("open.bt", src, Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	require.True(t, res.Ok(), "%v", res.Diags.Err())
	require.NotNil(t, res.Types)

	assert.Equal(t, []string{"@last", "@opens"}, res.Maps.Names())
	assert.True(t, res.Maps.Scalar["@last"])

	// Types are applied to the AST.
	syntax.Inspect(res.Program, func(n syntax.Node) bool {
		if m, ok := n.(*syntax.Map); ok {
			assert.False(t, types.IsNone(m.Type()), "%s at %s", m.Name, m.Pos())
			assert.False(t, types.IsNone(m.KeyType), "%s at %s", m.Name, m.Pos())
		}
		return true
	})
}

func TestCompileSyntaxError(t *testing.T) {
	res, err := Compile("bad.bt", "kprobe:f { $x = ; }", Options{})
	require.NoError(t, err)
	assert.False(t, res.Ok())
	assert.Nil(t, res.Types)

	errs := res.Diags.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, diag.CodeSyntax, errs[0].Code)
}

func TestWarningsAsErrors(t *testing.T) {
	src := `kprobe:f { $x = (uint64)1 + (int64)2; }`

	res, err := Compile("w.bt", src, Options{})
	require.NoError(t, err)
	assert.True(t, res.Ok())
	assert.Len(t, res.Diags.Warnings(), 1)

	res, err = Compile("w.bt", src, Options{WarningsAsErrors: true})
	require.NoError(t, err)
	assert.False(t, res.Ok())
}

func TestMapSugarErrorStopsResolution(t *testing.T) {
	src := `kprobe:f {
	@m = 1;
	@m[pid] = (uint64)2;
	$a = "x";
}`
	res, err := Compile("mixed.bt", src, Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	assert.False(t, res.Ok())

	errs := res.Diags.Errors()
	require.Len(t, errs, 1, "%v", res.Diags.Err())
	assert.Equal(t, diag.CodeSemantic, errs[0].Code)
	assert.Contains(t, errs[0].Message(), "@m")

	require.NotNil(t, res.Types)
	assert.Zero(t, res.Types.Iterations)
	assert.Empty(t, res.Types.Vars())
	syntax.Inspect(res.Program, func(n syntax.Node) bool {
		if e, ok := n.(syntax.Expr); ok {
			assert.True(t, types.IsNone(e.Type()), "%T at %s", e, e.Pos())
		}
		return true
	})
}

func TestPipeline(t *testing.T) {
	pm := Pipeline(Options{})
	assert.Equal(t, []string{"map-sugar", "resolve-types", "apply-types"}, pm.Passes())
}

func TestApplyWithoutResolve(t *testing.T) {
	pm := passes.NewManager(passes.Config{})
	defer func() {
		r := recover()
		require.NotNil(t, r)
		werr, ok := r.(*passes.WiringError)
		require.True(t, ok, "got %T", r)
		assert.Equal(t, "apply-types", werr.Pass)
	}()
	pm.Add(ApplyTypes())
}

func TestResolveNeedsConfig(t *testing.T) {
	pm := passes.NewManager(passes.Config{}).Add(passes.MapSugar())
	assert.Panics(t, func() { pm.Add(ResolveTypes()) })
}

func TestIterationLimit(t *testing.T) {
	_, err := Compile("loop.bt", `kprobe:f { $b = $a; $a = 1; }`, Options{MaxIterations: 1})
	require.Error(t, err)

	var limit *types2.IterationLimitError
	assert.True(t, errors.As(err, &limit))
	assert.Contains(t, err.Error(), "resolve-types: ")
}

func TestDumpAndVerify(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Passes: passes.Config{
			DumpAfter: "apply-types",
			Dump:      &buf,
			Verify:    true,
		},
	}
	res, err := Compile("d.bt", `kprobe:f { $a = 1; }`, opts)
	require.NoError(t, err)
	require.True(t, res.Ok())

	out := buf.String()
	assert.Contains(t, out, "--- after apply-types ---")
	assert.Contains(t, out, ":: uint8")
	assert.NotContains(t, out, "--- after resolve-types ---")
}

func TestCompileWithOracle(t *testing.T) {
	db, err := btf.Parse([]byte(`structs:
  task_struct:
    - {name: pid, type: int32}
`))
	require.NoError(t, err)

	res, err := Compile("t.bt", `kprobe:f { $p = curtask->pid; }`, Options{Oracle: db})
	require.NoError(t, err)
	require.True(t, res.Ok(), "%v", res.Diags.Err())

	for _, v := range res.Types.Vars() {
		if v.Name == "$p" {
			assert.True(t, types.Identical(types.Int32, res.Types.Types[v]))
		}
	}
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.bt")
	require.NoError(t, os.WriteFile(path, []byte("begin { @start = nsecs; }\n"), 0644))

	res, err := CompileFile(path, Options{})
	require.NoError(t, err)
	assert.True(t, res.Ok())

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.bt"), Options{})
	assert.Error(t, err)
}
