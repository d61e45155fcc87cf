package computation

import (
	"testing"

	"github.com/wireup-dev/wireup/pkg/lang"
)

func TestDatabaseRegisterAndGetRoundTrip(t *testing.T) {
	db := NewDatabase()
	c := FromCallable(lang.Callable{Name: "NewThing", Output: lang.New("myapp", "Thing")})
	id := db.Register(c)

	got := db.Get(id)
	if got.Kind != CallableKind {
		t.Fatalf("Get().Kind = %v, want CallableKind", got.Kind)
	}
	if got.Callable.Name != "NewThing" {
		t.Fatalf("Get().Callable.Name = %q, want %q", got.Callable.Name, "NewThing")
	}
}

func TestDatabaseGetUnknownIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unknown id")
		}
	}()
	db := NewDatabase()
	db.Get(ID(42))
}

func TestComputationOutputTypeCallable(t *testing.T) {
	out := lang.New("myapp", "Thing")
	c := FromCallable(lang.Callable{Output: out})
	if !c.OutputType().Equal(out) {
		t.Fatalf("OutputType() = %v, want %v", c.OutputType(), out)
	}
}

func TestComputationOutputTypeMatchResult(t *testing.T) {
	inner := lang.New("myapp", "Thing")
	c := FromMatchResult(MatchResult{Variant: Ok, Inner: inner})
	if !c.OutputType().Equal(inner) {
		t.Fatalf("OutputType() = %v, want %v", c.OutputType(), inner)
	}
	if c.Kind != MatchResultKind {
		t.Fatalf("Kind = %v, want MatchResultKind", c.Kind)
	}
}

func TestDatabaseIDsAreStableAcrossRegistrations(t *testing.T) {
	db := NewDatabase()
	first := db.Register(FromCallable(lang.Callable{Name: "A"}))
	second := db.Register(FromCallable(lang.Callable{Name: "B"}))
	if first == second {
		t.Fatalf("expected distinct ids, got %d and %d", first, second)
	}
	if db.Get(first).Callable.Name != "A" || db.Get(second).Callable.Name != "B" {
		t.Fatalf("ids did not round-trip to the expected registrations")
	}
}
