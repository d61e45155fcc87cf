package wireup

import (
	"strings"
	"testing"

	"github.com/wireup-dev/wireup/pkg/component"
	"github.com/wireup-dev/wireup/pkg/lang"
)

func TestPackagePanicsOnDuplicateID(t *testing.T) {
	bp := New()
	bp.Package("myapp/domain", "domain")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Package to panic on a duplicate id")
		}
	}()
	bp.Package("myapp/domain", "other")
}

func TestCompileFusesConstructorIntoHandler(t *testing.T) {
	bp := New()
	const pkg lang.PackageID = "myapp/domain"
	bp.Package(pkg, "domain")

	thing := lang.New(pkg, "Thing")
	bp.Constructor(lang.Callable{Package: pkg, Name: "NewThing", Output: thing}, component.Singleton)

	handler := bp.Handler(lang.Callable{
		Package: pkg, Name: "Handle",
		Inputs: []lang.ResolvedType{thing}, Output: lang.New(pkg, "Response"),
	})

	out, err := bp.Compile("HandleRequest", handler)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(out.Source, "func HandleRequest") {
		t.Fatalf("Compile() source missing function signature:\n%s", out.Source)
	}
	if !strings.Contains(out.Source, "domain.NewThing") {
		t.Fatalf("Compile() source missing constructor call:\n%s", out.Source)
	}
}

func TestCompileUnresolvableInputFails(t *testing.T) {
	bp := New()
	const pkg lang.PackageID = "myapp/domain"
	bp.Package(pkg, "domain")

	handler := bp.Handler(lang.Callable{
		Package: pkg, Name: "Handle",
		Inputs: []lang.ResolvedType{lang.New(pkg, "Missing")}, Output: lang.New(pkg, "Response"),
	})

	if _, err := bp.Compile("HandleRequest", handler); err == nil {
		t.Fatalf("expected Compile to fail for an unresolvable input")
	}
}

func TestExplainRendersDependencyTree(t *testing.T) {
	bp := New()
	const pkg lang.PackageID = "myapp/domain"
	bp.Package(pkg, "domain")

	thing := lang.New(pkg, "Thing")
	bp.Constructor(lang.Callable{Package: pkg, Name: "NewThing", Output: thing}, component.Singleton)
	handler := bp.Handler(lang.Callable{
		Package: pkg, Name: "Handle",
		Inputs: []lang.ResolvedType{thing}, Output: lang.New(pkg, "Response"),
	})

	tree, err := bp.Explain(handler)
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if !strings.Contains(tree, "NewThing") {
		t.Fatalf("Explain() tree missing constructor node:\n%s", tree)
	}
}
