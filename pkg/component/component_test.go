package component

import (
	"errors"
	"testing"

	"github.com/wireup-dev/wireup/pkg/computation"
	"github.com/wireup-dev/wireup/pkg/lang"
)

func newTestDB() (*computation.Database, *Database) {
	cdb := computation.NewDatabase()
	return cdb, NewDatabase(cdb)
}

func TestConstructorForResolvesUniqueProducer(t *testing.T) {
	cdb, db := newTestDB()
	thing := lang.New("myapp", "Thing")
	compID := cdb.Register(computation.FromCallable(lang.Callable{Name: "NewThing", Output: thing}))
	ctorID := db.RegisterConstructor(compID, Singleton)

	got, err := db.ConstructorFor(thing)
	if err != nil {
		t.Fatalf("ConstructorFor() error = %v", err)
	}
	if got != ctorID {
		t.Fatalf("ConstructorFor() = %d, want %d", got, ctorID)
	}
}

func TestConstructorForUnknownType(t *testing.T) {
	_, db := newTestDB()
	_, err := db.ConstructorFor(lang.New("myapp", "Missing"))
	if !errors.Is(err, ErrUnknownConstructor) {
		t.Fatalf("expected ErrUnknownConstructor, got %v", err)
	}
}

func TestConstructorForAmbiguous(t *testing.T) {
	cdb, db := newTestDB()
	thing := lang.New("myapp", "Thing")
	id1 := cdb.Register(computation.FromCallable(lang.Callable{Name: "NewThingA", Output: thing}))
	id2 := cdb.Register(computation.FromCallable(lang.Callable{Name: "NewThingB", Output: thing}))
	db.RegisterConstructor(id1, Singleton)
	db.RegisterConstructor(id2, Singleton)

	_, err := db.ConstructorFor(thing)
	if !errors.Is(err, ErrAmbiguousConstructor) {
		t.Fatalf("expected ErrAmbiguousConstructor, got %v", err)
	}
}

func TestExternalMarking(t *testing.T) {
	_, db := newTestDB()
	req := lang.New("net/http", "Request")
	if db.IsExternal(req) {
		t.Fatalf("expected IsExternal false before MarkExternal")
	}
	db.MarkExternal(req)
	if !db.IsExternal(req) {
		t.Fatalf("expected IsExternal true after MarkExternal")
	}
}

func TestErrorHandlerOfAttachment(t *testing.T) {
	cdb, db := newTestDB()
	errType := lang.New("myapp", "Error")
	thing := lang.New("myapp", "Thing")

	ctorCompID := cdb.Register(computation.FromCallable(lang.Callable{
		Name: "NewThing", Output: thing, ErrOutput: errType, Fallible: true,
	}))
	ctorID := db.RegisterConstructor(ctorCompID, RequestScoped)

	if _, ok := db.ErrorHandlerOf(ctorID); ok {
		t.Fatalf("expected no error handler before registration")
	}

	handlerCompID := cdb.Register(computation.FromCallable(lang.Callable{Name: "HandleErr", Inputs: []lang.ResolvedType{errType}}))
	handlerID := db.RegisterErrorHandler(handlerCompID, ctorID)

	got, ok := db.ErrorHandlerOf(ctorID)
	if !ok || got != handlerID {
		t.Fatalf("ErrorHandlerOf() = (%d, %v), want (%d, true)", got, ok, handlerID)
	}
}

func TestIsFallible(t *testing.T) {
	cdb, db := newTestDB()
	fallibleCompID := cdb.Register(computation.FromCallable(lang.Callable{Name: "F", Fallible: true}))
	plainCompID := cdb.Register(computation.FromCallable(lang.Callable{Name: "P"}))

	fallibleID := db.RegisterConstructor(fallibleCompID, Transient)
	plainID := db.RegisterConstructor(plainCompID, Transient)

	if !db.IsFallible(fallibleID) {
		t.Fatalf("expected IsFallible true for fallible constructor")
	}
	if db.IsFallible(plainID) {
		t.Fatalf("expected IsFallible false for plain constructor")
	}
}

func TestRegisterMatchTransformerProducesProjectionComponent(t *testing.T) {
	_, db := newTestDB()
	inner := lang.New("myapp", "Thing")
	id := db.RegisterMatchTransformer(computation.Ok, inner)

	hc := db.HydratedComponent(id)
	if hc.Kind != TransformerKind {
		t.Fatalf("Kind = %v, want TransformerKind", hc.Kind)
	}
	if !hc.OutputType().Equal(inner) {
		t.Fatalf("OutputType() = %v, want %v", hc.OutputType(), inner)
	}
}

func TestLifecyclePanicsOnNonConstructor(t *testing.T) {
	cdb, db := newTestDB()
	compID := cdb.Register(computation.FromCallable(lang.Callable{Name: "Handle"}))
	handlerID := db.RegisterRequestHandler(compID)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic calling Lifecycle on a non-constructor component")
		}
	}()
	db.Lifecycle(handlerID)
}
