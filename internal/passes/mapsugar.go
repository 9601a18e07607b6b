package passes

import (
	"golang.org/x/exp/slices"

	"github.com/you-not-fish/probec/internal/diag"
	"github.com/you-not-fish/probec/internal/syntax"
)

// MapInfo describes how each map is accessed after map sugar.
type MapInfo struct {
	Scalar map[string]bool       // map name -> accessed without a key in source
	First  map[string]syntax.Pos // map name -> first access
}

// Names returns the map names in sorted order.
func (mi *MapInfo) Names() []string {
	names := make([]string, 0, len(mi.First))
	for name := range mi.First {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// wholeMapFuncs take a map itself rather than one of its elements.
var wholeMapFuncs = map[string]bool{
	"clear": true,
	"print": true,
	"zero":  true,
}

// MapSugar returns the pass that gives every keyless map access the
// literal key 0, so that later passes see a single shape for map accesses.
// A map used both with and without a key is reported as an error.
func MapSugar() Pass {
	return New("map-sugar", runMapSugar)
}

type mapUse struct {
	keyed bool
	pos   syntax.Pos
}

func runMapSugar(ctx *Context) (*MapInfo, error) {
	info := &MapInfo{
		Scalar: make(map[string]bool),
		First:  make(map[string]syntax.Pos),
	}
	first := make(map[string]mapUse)
	whole := make(map[*syntax.Map]bool)
	var keyless []*syntax.Map

	syntax.Inspect(ctx.Program, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.Call:
			if wholeMapFuncs[n.Func] {
				for _, a := range n.Args {
					if m, ok := a.(*syntax.Map); ok && m.Key == nil {
						whole[m] = true
					}
				}
			}

		case *syntax.Map:
			if whole[n] {
				return true
			}
			use := mapUse{keyed: n.Key != nil, pos: n.Pos()}
			prev, seen := first[n.Name]
			if !seen {
				first[n.Name] = use
				info.First[n.Name] = use.pos
				info.Scalar[n.Name] = !use.keyed
			} else if prev.keyed != use.keyed {
				reportMixedKeys(ctx.Diags, n, prev)
			}
			if !use.keyed {
				keyless = append(keyless, n)
			}
		}
		return true
	})

	for _, m := range keyless {
		key := &syntax.IntLit{Value: 0}
		key.SetPos(m.Pos())
		m.Key = key
	}
	return info, nil
}

func reportMixedKeys(diags *diag.Diagnostics, m *syntax.Map, prev mapUse) {
	d := diags.AddError(m.Pos()).WithCode(diag.CodeSemantic)
	if prev.keyed {
		d.Printf("%s used as a scalar map after being used with a key", m.Name)
	} else {
		d.Printf("%s used with a key after being used as a scalar map", m.Name)
	}
	d.Hint("first use is at %s", prev.pos)
}
