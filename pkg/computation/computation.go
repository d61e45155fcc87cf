// Package computation holds the raw computation registry: callables and
// match projections (Ok/Err variant extraction out of a fallible
// result), keyed by a stable, append-only id. It has no ordering
// constraints beyond id stability and fails only when an unknown id is
// queried, which is a programmer error in the caller (the blueprint
// collaborator), not a user-facing compile error.
package computation

import (
	"fmt"

	"github.com/wireup-dev/wireup/pkg/lang"
)

// Variant identifies which branch of a fallible result a MatchResult
// computation projects out.
type Variant int

const (
	Ok Variant = iota
	Err
)

func (v Variant) String() string {
	if v == Ok {
		return "Ok"
	}
	return "Err"
}

// MatchResult names one branch of a fallible value's result.
type MatchResult struct {
	Variant Variant
	// Inner is the resolved type carried by this branch (the Ok payload
	// type, or the Err payload type).
	Inner lang.ResolvedType
}

// Kind tags which variant a Computation holds.
type Kind int

const (
	CallableKind Kind = iota
	MatchResultKind
)

// Computation is the tagged union of "a function to invoke" and "a
// projection that names one branch of a fallible value's result".
type Computation struct {
	Kind        Kind
	Callable    lang.Callable
	MatchResult MatchResult
}

// FromCallable wraps a callable as a Computation.
func FromCallable(c lang.Callable) Computation {
	return Computation{Kind: CallableKind, Callable: c}
}

// FromMatchResult wraps a match projection as a Computation.
func FromMatchResult(m MatchResult) Computation {
	return Computation{Kind: MatchResultKind, MatchResult: m}
}

// OutputType returns the resolved type this computation produces:
// the callable's success output, or the projection's inner type.
func (c Computation) OutputType() lang.ResolvedType {
	if c.Kind == MatchResultKind {
		return c.MatchResult.Inner
	}
	return c.Callable.Output
}

// ID is an opaque handle into the Database, stable across the lifetime
// of a single compile pass.
type ID int

// Database is a stable, append-only registry of computations keyed by
// insertion order.
type Database struct {
	entries []Computation
}

// NewDatabase returns an empty computation database.
func NewDatabase() *Database {
	return &Database{}
}

// Register appends computation to the database and returns its stable id.
func (db *Database) Register(c Computation) ID {
	db.entries = append(db.entries, c)
	return ID(len(db.entries) - 1)
}

// Get returns the computation registered under id. It panics if id was
// never registered: an unknown id at this layer is always a programmer
// error in an upstream collaborator, never a user-facing failure.
func (db *Database) Get(id ID) Computation {
	if int(id) < 0 || int(id) >= len(db.entries) {
		panic(fmt.Sprintf("computation: unknown id %d", id))
	}
	return db.entries[id]
}
