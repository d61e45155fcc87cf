package codegen

import "fmt"

// Fragment is a rendered code snippet associated with a call graph
// node during emission: a bound variable name, or an unbound inline
// call expression.
type Fragment struct {
	Text string
}

// VariableNameGenerator produces stable, collision-free variable names
// (v0, v1, ...). It is cloneable so each match arm can derive an
// independent name stream after a branch.
type VariableNameGenerator struct {
	next int
}

// NewVariableNameGenerator returns a generator starting at v0.
func NewVariableNameGenerator() *VariableNameGenerator {
	return &VariableNameGenerator{}
}

// Generate returns the next name in the sequence.
func (g *VariableNameGenerator) Generate() string {
	name := fmt.Sprintf("v%d", g.next)
	g.next++
	return name
}

// Clone returns an independent copy of g at its current position.
func (g *VariableNameGenerator) Clone() *VariableNameGenerator {
	cp := *g
	return &cp
}
