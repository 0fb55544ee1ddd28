package evalworkbook

// WeightCellRegistry collects, in placement order, the cells holding a non-null weight.
type WeightCellRegistry struct {
	cells []string
	seen  map[string]struct{}
}

func NewWeightCellRegistry() *WeightCellRegistry {
	return &WeightCellRegistry{seen: make(map[string]struct{})}
}

// Add records cell once; repeated cells are ignored.
func (r *WeightCellRegistry) Add(cell string) {
	if _, ok := r.seen[cell]; ok {
		return
	}
	r.seen[cell] = struct{}{}
	r.cells = append(r.cells, cell)
}

// Cells returns a copy of the collected cells.
func (r *WeightCellRegistry) Cells() []string {
	out := make([]string, len(r.cells))
	copy(out, r.cells)
	return out
}

func (r *WeightCellRegistry) Len() int {
	return len(r.cells)
}

// SumExpr is SUM over every collected cell, or the literal 0 when none were collected.
func (r *WeightCellRegistry) SumExpr() Expr {
	if len(r.cells) == 0 {
		return Num(0)
	}
	args := make([]Expr, len(r.cells))
	for i, c := range r.cells {
		args[i] = Ref{Cell: c}
	}
	return Fn("SUM", args...)
}
