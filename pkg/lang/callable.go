package lang

// Callable is a referenced symbol (a free function or a method) with
// ordered input types and an output type. The output type carries a
// fallibility tag: either a plain T, or a result-like type with an Ok
// and an Err component.
type Callable struct {
	// Package and Name identify the callable for rendering purposes,
	// e.g. Package "myapp/services", Name "NewUserRepository".
	Package PackageID
	Name    string

	Inputs []ResolvedType
	// Output is the success (or only) type produced by the callable.
	Output ResolvedType
	// ErrOutput is valid iff Fallible is true.
	ErrOutput ResolvedType
	Fallible  bool
	// Async marks a callable whose invocation must be awaited in
	// generated code.
	Async bool
}

// IsFallible reports whether the callable returns a result-like value
// (Ok=Output, Err=ErrOutput) rather than a plain Output.
func (c Callable) IsFallible() bool {
	return c.Fallible
}

// InputsOf returns the callable's ordered input types.
func (c Callable) InputsOf() []ResolvedType {
	return c.Inputs
}

// OutputOf returns the callable's success output type.
func (c Callable) OutputOf() ResolvedType {
	return c.Output
}

// QualifiedName renders the fully-qualified, package-aliased call target,
// e.g. "repo.NewUserRepository".
func (c Callable) QualifiedName(pkgMap *PackageMap) string {
	alias := pkgMap.NameOf(c.Package)
	if alias == "" {
		return c.Name
	}
	return alias + "." + c.Name
}
