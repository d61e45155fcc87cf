// Package component hydrates components: constructors, request
// handlers, error handlers, and transformers, from their computation
// references and auxiliary metadata (lifecycle, attached error handler,
// external-input markers). All queries here are pure lookups over a
// registry built once by the blueprint collaborator.
package component

import (
	"errors"
	"fmt"

	"github.com/wireup-dev/wireup/pkg/computation"
	"github.com/wireup-dev/wireup/pkg/lang"
)

// Lifecycle is the sharing policy of a constructed value.
type Lifecycle int

const (
	// Singleton is constructed at most once for the process lifetime.
	Singleton Lifecycle = iota
	// RequestScoped is constructed at most once per request.
	RequestScoped
	// Transient is constructed afresh at every point of use.
	Transient
)

func (l Lifecycle) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case RequestScoped:
		return "request-scoped"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Kind tags which role a hydrated component plays.
type Kind int

const (
	ConstructorKind Kind = iota
	RequestHandlerKind
	ErrorHandlerKind
	TransformerKind
)

// ID is an opaque handle into the Database.
type ID int

// NoID is the sentinel meaning "no component". It is not the zero
// value of ID: ID(0) is the first registered component.
const NoID ID = -1

// HydratedComponent is the fully-resolved form of a registered
// component: its computation, its role, and (for constructors) its
// lifecycle.
type HydratedComponent struct {
	Kind        Kind
	Computation computation.Computation
	Lifecycle   Lifecycle // meaningful iff Kind == ConstructorKind
}

// OutputType returns the resolved type this component produces.
func (h HydratedComponent) OutputType() lang.ResolvedType {
	return h.Computation.OutputType()
}

var (
	// ErrUnknownConstructor is returned when no constructor produces a
	// required type, whether or not the type is registered as external;
	// callers check IsExternal separately.
	ErrUnknownConstructor = errors.New("component: no constructor for type")
	// ErrAmbiguousConstructor is returned when more than one constructor
	// produces the same type in the same scope.
	ErrAmbiguousConstructor = errors.New("component: ambiguous constructor")
)

type record struct {
	kind          Kind
	computationID computation.ID
	lifecycle     Lifecycle
	errorHandler  ID // meaningful iff kind == ConstructorKind; NoID if none registered
}

// Database hydrates components atop a borrowed computation database. It
// is built once per compile pass by the blueprint collaborator. Code
// generation only reads it; call-graph construction also appends to it
// (and to the computation database) through RegisterMatchTransformer,
// once per expanded fallible constructor on every Build.
type Database struct {
	computations *computation.Database

	records []record

	// byOutputType indexes constructor component ids by the key of the
	// type they produce, preserving blueprint registration order so that
	// iteration and ambiguity error messages are deterministic.
	byOutputType map[string][]ID

	// external marks resolved types that the framework supplies directly
	// (no constructor needed); unresolved inputs of these types become
	// InputParameter nodes instead of a hard "unresolvable input" error.
	external map[string]bool
}

// NewDatabase returns an empty component database hydrating computations
// out of cdb.
func NewDatabase(cdb *computation.Database) *Database {
	return &Database{
		computations: cdb,
		byOutputType: make(map[string][]ID),
		external:     make(map[string]bool),
	}
}

func (db *Database) push(r record) ID {
	db.records = append(db.records, r)
	return ID(len(db.records) - 1)
}

// RegisterConstructor registers a constructor computation with the given
// lifecycle and returns its component id.
func (db *Database) RegisterConstructor(computationID computation.ID, lifecycle Lifecycle) ID {
	id := db.push(record{kind: ConstructorKind, computationID: computationID, lifecycle: lifecycle, errorHandler: NoID})
	outputKey := db.computations.Get(computationID).OutputType().Key()
	db.byOutputType[outputKey] = append(db.byOutputType[outputKey], id)
	return id
}

// RegisterRequestHandler registers the handler computation for a route.
func (db *Database) RegisterRequestHandler(computationID computation.ID) ID {
	return db.push(record{kind: RequestHandlerKind, computationID: computationID, errorHandler: NoID})
}

// RegisterTransformer registers a derived node, e.g. a MatchResult
// projection materialized as its own component.
func (db *Database) RegisterTransformer(computationID computation.ID) ID {
	return db.push(record{kind: TransformerKind, computationID: computationID, errorHandler: NoID})
}

// RegisterMatchTransformer registers the Ok or Err projection of a
// fallible computation's result as a transformer component and returns
// its id. Called by call-graph construction when expanding a fallible
// constructor into its MatchBranching form.
func (db *Database) RegisterMatchTransformer(variant computation.Variant, inner lang.ResolvedType) ID {
	computationID := db.computations.Register(computation.FromMatchResult(computation.MatchResult{Variant: variant, Inner: inner}))
	return db.RegisterTransformer(computationID)
}

// RegisterErrorHandler registers an error handler computation and
// attaches it to source, the fallible constructor it handles failures
// for. A constructor may have at most one attached error handler;
// re-registering replaces the previous attachment.
func (db *Database) RegisterErrorHandler(computationID computation.ID, source ID) ID {
	id := db.push(record{kind: ErrorHandlerKind, computationID: computationID, errorHandler: NoID})
	db.records[source].errorHandler = id
	return id
}

// MarkExternal declares t as supplied directly by the framework runtime
// (a free input to the generated handler) rather than constructed.
func (db *Database) MarkExternal(t lang.ResolvedType) {
	db.external[t.Key()] = true
}

// IsExternal reports whether t was declared via MarkExternal.
func (db *Database) IsExternal(t lang.ResolvedType) bool {
	return db.external[t.Key()]
}

// HydratedComponent returns the fully-resolved form of id.
func (db *Database) HydratedComponent(id ID) HydratedComponent {
	r := db.records[id]
	return HydratedComponent{
		Kind:        r.kind,
		Computation: db.computations.Get(r.computationID),
		Lifecycle:   r.lifecycle,
	}
}

// OutputType returns the resolved type id produces.
func (db *Database) OutputType(id ID) lang.ResolvedType {
	return db.HydratedComponent(id).OutputType()
}

// Lifecycle returns the sharing policy of the constructor id. Calling it
// on a non-constructor component is a programmer error.
func (db *Database) Lifecycle(id ID) Lifecycle {
	r := db.records[id]
	if r.kind != ConstructorKind {
		panic(fmt.Sprintf("component: Lifecycle called on non-constructor component %d", id))
	}
	return r.lifecycle
}

// ErrorHandlerOf returns the error handler attached to the fallible
// constructor id, if any.
func (db *Database) ErrorHandlerOf(id ID) (ID, bool) {
	r := db.records[id]
	if r.errorHandler == NoID {
		return NoID, false
	}
	return r.errorHandler, true
}

// ConstructorFor returns the unique constructor producing t. It returns
// ErrUnknownConstructor if none is registered, or ErrAmbiguousConstructor
// if more than one constructor in scope produces t.
func (db *Database) ConstructorFor(t lang.ResolvedType) (ID, error) {
	ids, ok := db.byOutputType[t.Key()]
	if !ok || len(ids) == 0 {
		return NoID, fmt.Errorf("%w: %s", ErrUnknownConstructor, t)
	}
	if len(ids) > 1 {
		return NoID, fmt.Errorf("%w: %s has %d producers", ErrAmbiguousConstructor, t, len(ids))
	}
	return ids[0], nil
}

// IsFallible reports whether id's underlying computation is a fallible
// callable.
func (db *Database) IsFallible(id ID) bool {
	c := db.HydratedComponent(id).Computation
	return c.Kind == computation.CallableKind && c.Callable.Fallible
}
