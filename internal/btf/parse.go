package btf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/you-not-fish/probec/internal/rtabi"
	"github.com/you-not-fish/probec/internal/types"
)

// cNames maps C spellings that are not predeclared probe types.
var cNames = map[string]types.Type{
	"int":                types.Int32,
	"unsigned":           types.Uint32,
	"unsigned int":       types.Uint32,
	"short":              types.Int16,
	"unsigned short":     types.Uint16,
	"long":               types.Int64,
	"unsigned long":      types.Uint64,
	"long long":          types.Int64,
	"unsigned long long": types.Uint64,
	"unsigned char":      types.Uint8,
	"_Bool":              types.Bool,
	"pid_t":              types.Int32,
	"size_t":             types.Uint64,
}

// ParseType parses a C-like type spelling: a predeclared or C base type
// (uint32, unsigned long, bool), or "struct NAME", followed by any number
// of '*' and an optional [N] array suffix. char[N] is a string of N bytes
// and void * points to bytes. Struct names are resolved through structs.
func ParseType(spelling string, structs func(name string) (*types.Record, error)) (types.Type, error) {
	s := strings.TrimSpace(spelling)
	if s == "" {
		return nil, fmt.Errorf("empty type")
	}

	var arrayLen int64 = -1
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return nil, fmt.Errorf("malformed array type %q", spelling)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s[open+1:len(s)-1]), 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bad array length in %q", spelling)
		}
		arrayLen = n
		s = strings.TrimSpace(s[:open])
	}

	ptr := 0
	for strings.HasSuffix(s, "*") {
		ptr++
		s = strings.TrimSpace(s[:len(s)-1])
	}

	var t types.Type
	switch {
	case strings.HasPrefix(s, "struct "):
		name := strings.TrimSpace(strings.TrimPrefix(s, "struct "))
		if structs == nil {
			return nil, fmt.Errorf("struct %s: %w", name, ErrNotFound)
		}
		r, err := structs(name)
		if err != nil {
			return nil, err
		}
		t = r
	case s == "void":
		if ptr == 0 {
			return nil, fmt.Errorf("void is not a value type")
		}
		t = types.Uint8
	case s == "char" && ptr == 0 && arrayLen > 0:
		if arrayLen > rtabi.MaxStringSize {
			return nil, fmt.Errorf("string %q longer than %d bytes", spelling, rtabi.MaxStringSize)
		}
		return types.NewString(arrayLen), nil
	default:
		var ok bool
		if t, ok = cNames[s]; !ok {
			if t, ok = types.Lookup(s); !ok {
				return nil, fmt.Errorf("unknown type %q", s)
			}
		}
	}

	for i := 0; i < ptr; i++ {
		t = types.NewPointer(t)
	}
	if arrayLen > 0 {
		t = types.NewArray(arrayLen, t)
	}
	return t, nil
}
