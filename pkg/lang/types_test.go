package lang

import "testing"

func TestResolvedTypeKeyIdentity(t *testing.T) {
	a := New("net/http", "Request")
	b := New("net/http", "Request")
	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %q and %q", a.Key(), b.Key())
	}
	if !a.Equal(b) {
		t.Fatalf("expected a.Equal(b)")
	}
}

func TestResolvedTypeKeyDistinguishesGenericArgs(t *testing.T) {
	user := New("myapp", "User")
	order := New("myapp", "Order")
	a := Generic("", "Accessor", user)
	b := Generic("", "Accessor", order)
	if a.Key() == b.Key() {
		t.Fatalf("expected distinct keys for Accessor[User] and Accessor[Order]")
	}
}

func TestResolvedTypeIsZero(t *testing.T) {
	var z ResolvedType
	if !z.IsZero() {
		t.Fatalf("expected zero value to report IsZero")
	}
	if New("pkg", "T").IsZero() {
		t.Fatalf("expected a named type to not report IsZero")
	}
}

func TestResolvedTypeRenderUsesPackageAlias(t *testing.T) {
	pm := NewPackageMap(map[PackageID]string{"net/http": "http"})
	typ := New("net/http", "Request")
	if got, want := typ.Render(pm), "http.Request"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestResolvedTypeRenderBuiltinHasNoAlias(t *testing.T) {
	pm := NewPackageMap(nil)
	typ := New("", "string")
	if got, want := typ.Render(pm), "string"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestResolvedTypeRenderGeneric(t *testing.T) {
	pm := NewPackageMap(map[PackageID]string{"myapp": "myapp"})
	typ := Generic("", "Accessor", New("myapp", "User"))
	if got, want := typ.Render(pm), "Accessor[myapp.User]"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestNewPackageMapPanicsOnDuplicateAlias(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate package alias")
		}
	}()
	NewPackageMap(map[PackageID]string{
		"myapp/repo":     "shared",
		"myapp/handlers": "shared",
	})
}

func TestNewPackageMapNameOfUnregisteredIDReturnsID(t *testing.T) {
	pm := NewPackageMap(nil)
	if got, want := pm.NameOf("unregistered/pkg"), "unregistered/pkg"; got != want {
		t.Fatalf("NameOf() = %q, want %q", got, want)
	}
}
