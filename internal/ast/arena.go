package ast

// Arena owns every Expr belonging to one module. Nodes are addressed by
// ExprID (their index into nodes); this is what lets the expression tree
// carry ancestor back-references (see Expr.Anc) without the garbage
// collector having to reason about reference cycles.
type Arena struct {
	nodes []Expr
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// New appends expr to the arena and returns its ID.
func (a *Arena) New(expr Expr) ExprID {
	id := ExprID(len(a.nodes))
	a.nodes = append(a.nodes, expr)
	return id
}

// Get returns a pointer to the node stored at id. The pointer is only
// valid until the next call to New, which may reallocate the backing
// slice.
func (a *Arena) Get(id ExprID) *Expr {
	return &a.nodes[id]
}

// Len returns the number of nodes allocated so far.
func (a *Arena) Len() int {
	return len(a.nodes)
}
