package types

import "testing"

func TestIdentical(t *testing.T) {
	tests := []struct {
		name string
		x, y Type
		want bool
	}{
		{"same int", Uint8, Uint8, true},
		{"width", Uint8, Uint16, false},
		{"sign", Uint8, Int8, false},
		{"string len", NewString(4), NewString(4), true},
		{"string len differs", NewString(4), NewString(5), false},
		{"pointer", NewPointer(Int32), NewPointer(Int32), true},
		{"pointer elem", NewPointer(Int32), NewPointer(Int64), false},
		{"array", NewArray(2, Uint8), NewArray(2, Uint8), true},
		{"array len", NewArray(2, Uint8), NewArray(3, Uint8), false},
		{"tuple", NewTuple([]Type{Uint8, Bool}), NewTuple([]Type{Uint8, Bool}), true},
		{"tuple order", NewTuple([]Type{Uint8, Bool}), NewTuple([]Type{Bool, Uint8}), false},
		{"aggregate", NewAggregate(AggSum, true), NewAggregate(AggSum, true), true},
		{"aggregate sign", NewAggregate(AggSum, true), NewAggregate(AggSum, false), false},
		{"bool vs int", Bool, Uint8, false},
		{"nil", nil, Uint8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identical(tt.x, tt.y); got != tt.want {
				t.Errorf("Identical(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestIdenticalRecordIgnoresFieldOrder(t *testing.T) {
	a := NewRecord([]*Field{{"x", Uint8}, {"y", Int64}})
	b := NewRecord([]*Field{{"y", Int64}, {"x", Uint8}})
	if !Identical(a, b) {
		t.Error("records with the same fields in different order should be identical")
	}

	c := NewRecord([]*Field{{"x", Uint8}, {"z", Int64}})
	if Identical(a, c) {
		t.Error("records with different field names should not be identical")
	}

	named := NewStruct("foo", []*Field{{"x", Uint8}, {"y", Int64}})
	if Identical(a, named) {
		t.Error("anonymous record should not be identical to a named struct")
	}
}

func TestIntegerFor(t *testing.T) {
	tests := []struct {
		mag  uint64
		neg  bool
		want *Integer
	}{
		{0, false, Uint8},
		{1, false, Uint8},
		{255, false, Uint8},
		{256, false, Uint16},
		{65535, false, Uint16},
		{65536, false, Uint32},
		{1 << 32, false, Uint64},
		{1, true, Int8},
		{128, true, Int8},
		{129, true, Int16},
		{1 << 15, true, Int16},
		{1 << 31, true, Int32},
		{1<<31 + 1, true, Int64},
	}

	for _, tt := range tests {
		if got := IntegerFor(tt.mag, tt.neg); got != tt.want {
			t.Errorf("IntegerFor(%d, %v) = %s, want %s", tt.mag, tt.neg, got, tt.want)
		}
	}
}

func TestIsResolved(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{nil, false},
		{None, false},
		{Uint8, true},
		{NewTuple([]Type{Uint8, None}), false},
		{NewTuple([]Type{Uint8, NewTuple([]Type{Bool})}), true},
		{NewRecord([]*Field{{"a", None}}), false},
		{NewPointer(None), false},
	}
	for _, tt := range tests {
		if got := IsResolved(tt.typ); got != tt.want {
			t.Errorf("IsResolved(%v) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Uint64, "int"},
		{Int8, "int"},
		{NewString(3), "string"},
		{NewPointer(Uint8), "pointer"},
		{NewTuple(nil), "tuple"},
		{NewRecord(nil), "record"},
		{NewAggregate(AggSum, true), "sum"},
		{None, "none"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.typ); got != tt.want {
			t.Errorf("BaseName(%v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestReadType(t *testing.T) {
	if got := ReadType(NewAggregate(AggCount, false)); got != Uint64 {
		t.Errorf("ReadType(count) = %s, want uint64", got)
	}
	if got := ReadType(NewAggregate(AggSum, true)); got != Int64 {
		t.Errorf("ReadType(sum_t) = %s, want int64", got)
	}
	if got := ReadType(Uint16); got != Uint16 {
		t.Errorf("ReadType(uint16) = %s, want uint16", got)
	}
}

func TestSelfReferentialStruct(t *testing.T) {
	list := NewStruct("list_head", nil)
	list.Complete([]*Field{{"next", NewPointer(list)}, {"prev", NewPointer(list)}})

	other := NewStruct("list_head", nil)
	other.Complete([]*Field{{"next", NewPointer(other)}, {"prev", NewPointer(other)}})

	if !Identical(list, other) {
		t.Error("structs with the same name should be identical")
	}
	if !IsResolved(NewPointer(list)) {
		t.Error("pointer to a self-referential struct should be resolved")
	}
	if got, ok := Promote(list, other); !ok || got != list {
		t.Errorf("Promote(list_head, list_head) = %v, %v; want list_head, true", got, ok)
	}
	if got := DefaultSizes.Sizeof(list); got != 16 {
		t.Errorf("Sizeof(list_head) = %d, want 16", got)
	}
}
