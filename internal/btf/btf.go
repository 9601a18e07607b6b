// Package btf provides the kernel type metadata consulted when a program
// names a C struct, such as in a (struct task_struct *) cast or the curtask
// builtin.
//
// Real BTF is read from the running kernel by the runtime; the compiler only
// needs struct layouts, which are loaded from a YAML description:
//
//	structs:
//	  task_struct:
//	    - {name: pid, type: int32}
//	    - {name: comm, type: "char[16]"}
//	    - {name: parent, type: "struct task_struct *"}
package btf

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/you-not-fish/probec/internal/types"
)

// ErrNotFound is returned (wrapped) when a struct is not known.
var ErrNotFound = errors.New("type not found")

// Registry looks up C structs by name.
type Registry interface {
	Struct(name string) (*types.Record, error)
}

// FieldDecl is one field of a struct as written in the YAML description.
type FieldDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type file struct {
	Structs map[string][]FieldDecl `yaml:"structs"`
}

// Database is a Registry backed by a YAML description. Struct types are
// built on first use and cached.
type Database struct {
	decls map[string][]FieldDecl
	built map[string]*types.Record
}

// LoadFile reads and parses the description in path.
func LoadFile(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("btf: %w", err)
	}
	db, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("btf: %s: %w", path, err)
	}
	return db, nil
}

// Parse parses a YAML description. Every struct is built once so that
// malformed field types are reported here rather than during compilation.
func Parse(data []byte) (*Database, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	db := &Database{
		decls: make(map[string][]FieldDecl, len(f.Structs)),
		built: make(map[string]*types.Record, len(f.Structs)),
	}
	for name, fields := range f.Structs {
		seen := make(map[string]bool, len(fields))
		for _, fd := range fields {
			if fd.Name == "" {
				return nil, fmt.Errorf("struct %s: field without a name", name)
			}
			if seen[fd.Name] {
				return nil, fmt.Errorf("struct %s: duplicate field %s", name, fd.Name)
			}
			seen[fd.Name] = true
		}
		db.decls[name] = fields
	}

	for _, name := range db.Names() {
		if _, err := db.Struct(name); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Names returns the struct names in sorted order.
func (db *Database) Names() []string {
	names := make([]string, 0, len(db.decls))
	for name := range db.decls {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Struct implements Registry.
func (db *Database) Struct(name string) (*types.Record, error) {
	if r, ok := db.built[name]; ok {
		return r, nil
	}
	decls, ok := db.decls[name]
	if !ok {
		return nil, fmt.Errorf("struct %s: %w", name, ErrNotFound)
	}

	// Register before building the fields so that pointers back to the
	// struct resolve to the same record.
	r := types.NewStruct(name, nil)
	db.built[name] = r

	fields := make([]*types.Field, len(decls))
	for i, fd := range decls {
		t, err := ParseType(fd.Type, db.Struct)
		if err != nil {
			delete(db.built, name)
			return nil, fmt.Errorf("struct %s: field %s: %w", name, fd.Name, err)
		}
		fields[i] = &types.Field{Name: fd.Name, Type: t}
	}
	r.Complete(fields)
	return r, nil
}

// Static is a Registry over a fixed set of records, keyed by struct name.
type Static map[string]*types.Record

// Struct implements Registry.
func (s Static) Struct(name string) (*types.Record, error) {
	if r, ok := s[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("struct %s: %w", name, ErrNotFound)
}
