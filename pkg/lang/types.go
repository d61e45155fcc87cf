// Package lang is the pure type & callable model: resolved types, package
// identifiers, and callable signatures. It has no side effects and is
// plain data; the one failure mode is NewPackageMap's panic on a
// duplicate package name.
package lang

import (
	"fmt"
	"strings"
)

// PackageID is an opaque, fully-qualified package identifier (an import
// path, e.g. "net/http" or "github.com/acme/orders").
type PackageID string

// PackageMap is a bijective mapping between PackageIDs and the local
// names the generated code will import them as. It is supplied by the
// caller (the blueprint/codegen driver) and is read-only to this package.
type PackageMap struct {
	idToName map[PackageID]string
	nameToID map[string]PackageID
}

// NewPackageMap builds a PackageMap from a set of (id, name) pairs.
// Duplicate ids or names are a programmer error and panic, since the map
// is built once at compile setup time from trusted input.
func NewPackageMap(pairs map[PackageID]string) *PackageMap {
	m := &PackageMap{
		idToName: make(map[PackageID]string, len(pairs)),
		nameToID: make(map[string]PackageID, len(pairs)),
	}
	for id, name := range pairs {
		if _, ok := m.idToName[id]; ok {
			panic(fmt.Sprintf("lang: duplicate package id %q", id))
		}
		if _, ok := m.nameToID[name]; ok {
			panic(fmt.Sprintf("lang: duplicate package name %q", name))
		}
		m.idToName[id] = name
		m.nameToID[name] = id
	}
	return m
}

// NameOf returns the local alias registered for id, or id itself if the
// id was never registered (e.g. the empty package, for builtins).
func (m *PackageMap) NameOf(id PackageID) string {
	if id == "" {
		return ""
	}
	if name, ok := m.idToName[id]; ok {
		return name
	}
	return string(id)
}

// ResolvedType is an opaque, structurally compared, fully-qualified type
// reference. Two ResolvedTypes referring to the same underlying type
// compare equal regardless of where they were constructed.
type ResolvedType struct {
	Package     PackageID
	Name        string
	GenericArgs []ResolvedType
}

// New builds a non-generic ResolvedType.
func New(pkg PackageID, name string) ResolvedType {
	return ResolvedType{Package: pkg, Name: name}
}

// Generic builds a ResolvedType with generic type arguments, e.g.
// Generic("", "Accessor", New("myapp", "User")) for Accessor[User].
func Generic(pkg PackageID, name string, args ...ResolvedType) ResolvedType {
	return ResolvedType{Package: pkg, Name: name, GenericArgs: args}
}

// Key returns a canonical string identity for this type, suitable for use
// as a map key. Two ResolvedTypes are the "same type" iff their Key()
// values match.
func (t ResolvedType) Key() string {
	var b strings.Builder
	t.writeKey(&b)
	return b.String()
}

func (t ResolvedType) writeKey(b *strings.Builder) {
	b.WriteString(string(t.Package))
	b.WriteByte('.')
	b.WriteString(t.Name)
	if len(t.GenericArgs) > 0 {
		b.WriteByte('[')
		for i, a := range t.GenericArgs {
			if i > 0 {
				b.WriteByte(',')
			}
			a.writeKey(b)
		}
		b.WriteByte(']')
	}
}

// Equal reports whether t and other refer to the same resolved type.
func (t ResolvedType) Equal(other ResolvedType) bool {
	return t.Key() == other.Key()
}

// IsZero reports whether t is the zero ResolvedType (no package, no name).
func (t ResolvedType) IsZero() bool {
	return t.Package == "" && t.Name == "" && len(t.GenericArgs) == 0
}

// Render renders t as target-language (Go) syntax, using pkgMap to
// resolve package ids to the local alias the generated file imports them
// under. Builtin types (empty package id) render bare.
func (t ResolvedType) Render(pkgMap *PackageMap) string {
	var b strings.Builder
	t.writeRender(&b, pkgMap)
	return b.String()
}

func (t ResolvedType) writeRender(b *strings.Builder, pkgMap *PackageMap) {
	if alias := pkgMap.NameOf(t.Package); alias != "" {
		b.WriteString(alias)
		b.WriteByte('.')
	}
	b.WriteString(t.Name)
	if len(t.GenericArgs) > 0 {
		b.WriteByte('[')
		for i, a := range t.GenericArgs {
			if i > 0 {
				b.WriteString(", ")
			}
			a.writeRender(b, pkgMap)
		}
		b.WriteByte(']')
	}
}

func (t ResolvedType) String() string {
	return t.Key()
}
