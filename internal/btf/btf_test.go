package btf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-not-fish/probec/internal/types"
)

func TestLoadFile(t *testing.T) {
	db, err := LoadFile("testdata/kernel.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"file", "mm_struct", "task_struct"}, db.Names())

	task, err := db.Struct("task_struct")
	require.NoError(t, err)
	assert.Equal(t, "task_struct", task.Name())
	require.Equal(t, 6, task.NumFields())

	comm, _ := task.Lookup("comm")
	require.NotNil(t, comm)
	assert.True(t, types.Identical(comm.Type, types.NewString(16)))

	// parent points back to the same record.
	parent, _ := task.Lookup("parent")
	require.NotNil(t, parent)
	ptr, ok := parent.Type.(*types.Pointer)
	require.True(t, ok)
	assert.Same(t, task, ptr.Elem())

	// Cross references resolve in both directions.
	mm, err := db.Struct("mm_struct")
	require.NoError(t, err)
	owner, _ := mm.Lookup("owner")
	assert.Same(t, task, owner.Type.(*types.Pointer).Elem())

	assert.Equal(t, int64(4), types.DefaultSizes.FieldOffset(task, "tgid"))
	assert.Equal(t, int64(8), types.DefaultSizes.FieldOffset(task, "comm"))
}

func TestStructNotFound(t *testing.T) {
	db, err := Parse([]byte("structs: {}"))
	require.NoError(t, err)

	_, err = db.Struct("inode")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "struct inode: type not found", err.Error())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad_yaml", "structs: [", "yaml"},
		{"unnamed_field", "structs:\n  a:\n    - {type: int32}\n", "struct a: field without a name"},
		{"duplicate_field", "structs:\n  a:\n    - {name: x, type: int32}\n    - {name: x, type: int32}\n", "duplicate field x"},
		{"unknown_type", "structs:\n  a:\n    - {name: x, type: float}\n", `unknown type "float"`},
		{"missing_struct", "structs:\n  a:\n    - {name: x, type: struct b *}\n", "struct b: type not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseType(t *testing.T) {
	task := types.NewStruct("task_struct", nil)
	structs := Static{"task_struct": task}.Struct

	tests := []struct {
		spelling string
		want     types.Type
	}{
		{"uint32", types.Uint32},
		{"int8", types.Int8},
		{"bool", types.Bool},
		{"unsigned long", types.Uint64},
		{"int", types.Int32},
		{"char[16]", types.NewString(16)},
		{"uint8[4]", types.NewArray(4, types.Uint8)},
		{"struct task_struct", task},
		{"struct task_struct *", types.NewPointer(task)},
		{"struct task_struct*", types.NewPointer(task)},
		{"uint64 **", types.NewPointer(types.NewPointer(types.Uint64))},
		{"void *", types.NewPointer(types.Uint8)},
	}

	for _, tt := range tests {
		t.Run(tt.spelling, func(t *testing.T) {
			got, err := ParseType(tt.spelling, structs)
			require.NoError(t, err)
			assert.True(t, types.Identical(got, tt.want), "got %s, want %s", got, tt.want)
		})
	}

	for _, bad := range []string{"", "void", "uint8[0]", "uint8[", "struct nope", "char[4096]"} {
		_, err := ParseType(bad, structs)
		assert.Error(t, err, "ParseType(%q)", bad)
	}
}
