// Package wireup is the declarative registration surface for the
// compile-time dependency-injection compiler: register constructors,
// request handlers, and error handlers against a Blueprint, then
// Compile each handler into a standalone Go function plus the set of
// external inputs it needs from the surrounding application. A
// Blueprint is built up, then compiled, in a single-threaded pass; the
// output of Compile is plain Go source with no dependency on this
// package.
package wireup

import (
	"fmt"
	"log/slog"

	"github.com/wireup-dev/wireup/pkg/callgraph"
	"github.com/wireup-dev/wireup/pkg/codegen"
	"github.com/wireup-dev/wireup/pkg/component"
	"github.com/wireup-dev/wireup/pkg/computation"
	"github.com/wireup-dev/wireup/pkg/diagnostics"
	"github.com/wireup-dev/wireup/pkg/lang"
)

// Blueprint accumulates component registrations and renders the
// resulting package map, computation database, and component database
// that graph construction and code generation read from.
type Blueprint struct {
	packages map[lang.PackageID]string
	comps    *computation.Database
	parts    *component.Database
	logger   *slog.Logger
}

// BlueprintOption configures a Blueprint at construction time.
type BlueprintOption func(*Blueprint)

// WithLogger attaches a structured logger used for build and compile
// diagnostics. A Blueprint created by New without this option logs to
// slog's default logger.
func WithLogger(logger *slog.Logger) BlueprintOption {
	return func(b *Blueprint) { b.logger = logger }
}

// New returns an empty Blueprint.
func New(opts ...BlueprintOption) *Blueprint {
	cdb := computation.NewDatabase()
	b := &Blueprint{
		packages: make(map[lang.PackageID]string),
		comps:    cdb,
		parts:    component.NewDatabase(cdb),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Package registers the local import alias a generated file should use
// for pkg. Calling it twice for the same id panics; a duplicate alias
// for two different ids is caught later, at Compile, by
// lang.NewPackageMap's own bijectivity check.
func (b *Blueprint) Package(pkg lang.PackageID, alias string) {
	if _, ok := b.packages[pkg]; ok {
		panic(fmt.Sprintf("wireup: package %q already registered", pkg))
	}
	b.packages[pkg] = alias
}

// Constructor registers callable as a producer of its output type,
// shared according to lifecycle. It returns a handle usable as the
// source argument to ErrorHandler.
func (b *Blueprint) Constructor(callable lang.Callable, lifecycle component.Lifecycle) component.ID {
	id := b.comps.Register(computation.FromCallable(callable))
	return b.parts.RegisterConstructor(id, lifecycle)
}

// Handler registers callable as a request handler entry point and
// returns the component id to pass to Compile.
func (b *Blueprint) Handler(callable lang.Callable) component.ID {
	id := b.comps.Register(computation.FromCallable(callable))
	return b.parts.RegisterRequestHandler(id)
}

// ErrorHandler registers callable as the error handler for the
// fallible constructor identified by source.
func (b *Blueprint) ErrorHandler(source component.ID, callable lang.Callable) component.ID {
	id := b.comps.Register(computation.FromCallable(callable))
	return b.parts.RegisterErrorHandler(id, source)
}

// External declares t as supplied directly by the calling application.
// An unresolved dependency of this type becomes a parameter of the
// generated handler instead of a build error.
func (b *Blueprint) External(t lang.ResolvedType) {
	b.parts.MarkExternal(t)
}

// Compile builds the call graph rooted at handler and renders it as a
// Go function named name. It validates the graph's structural
// invariants before emission and logs both outcomes.
func (b *Blueprint) Compile(name string, handler component.ID) (*codegen.Handler, error) {
	pkgMap := lang.NewPackageMap(b.packages)

	cg, err := callgraph.Build(handler, b.parts)
	if err != nil {
		diagnostics.LogBuildFailure(b.logger, name, err)
		return nil, fmt.Errorf("wireup: compiling %s: %w", name, err)
	}

	out, err := codegen.GenerateHandler(name, cg, b.parts, pkgMap)
	if err != nil {
		diagnostics.LogBuildFailure(b.logger, name, err)
		return nil, fmt.Errorf("wireup: compiling %s: %w", name, err)
	}
	diagnostics.LogCompiled(b.logger, name, cg)
	return out, nil
}

// Explain renders the call graph rooted at handler as an ASCII
// dependency tree, for diagnostics or -v build output. It does not
// require the graph to have been compiled successfully first; a
// resolvable-but-not-yet-validated graph can still be inspected.
func (b *Blueprint) Explain(handler component.ID) (string, error) {
	pkgMap := lang.NewPackageMap(b.packages)
	cg, err := callgraph.Build(handler, b.parts)
	if err != nil {
		return "", err
	}
	return diagnostics.RenderTree(cg, b.parts, pkgMap), nil
}
