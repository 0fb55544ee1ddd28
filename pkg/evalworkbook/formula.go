package evalworkbook

import (
	"strconv"
	"strings"
)

// Expr is a spreadsheet formula kept as data until it is written to a cell.
type Expr interface {
	render(sb *strings.Builder)
}

// Render returns the formula text without the leading "=".
func Render(e Expr) string {
	var sb strings.Builder
	e.render(&sb)
	return sb.String()
}

// Ref addresses a single cell, optionally on another sheet.
type Ref struct {
	Sheet    string
	Cell     string
	Absolute bool
}

func (r Ref) render(sb *strings.Builder) {
	writeSheetPrefix(sb, r.Sheet)
	if r.Absolute {
		sb.WriteString(absolute(r.Cell))
		return
	}
	sb.WriteString(r.Cell)
}

// Range addresses a rectangular block of cells.
type Range struct {
	Sheet string
	From  string
	To    string
}

func (r Range) render(sb *strings.Builder) {
	writeSheetPrefix(sb, r.Sheet)
	sb.WriteString(r.From)
	sb.WriteByte(':')
	sb.WriteString(r.To)
}

// Name is a workbook-level defined name.
type Name string

func (n Name) render(sb *strings.Builder) {
	sb.WriteString(string(n))
}

// Num is a numeric literal.
type Num float64

func (n Num) render(sb *strings.Builder) {
	sb.WriteString(strconv.FormatFloat(float64(n), 'f', -1, 64))
}

// Str is a string literal.
type Str string

func (s Str) render(sb *strings.Builder) {
	sb.WriteByte('"')
	sb.WriteString(strings.ReplaceAll(string(s), `"`, `""`))
	sb.WriteByte('"')
}

// Call invokes a spreadsheet function.
type Call struct {
	Fn   string
	Args []Expr
}

func (c Call) render(sb *strings.Builder) {
	sb.WriteString(c.Fn)
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		a.render(sb)
	}
	sb.WriteByte(')')
}

// BinOp applies an infix operator. Operands are parenthesised only when precedence requires it.
type BinOp struct {
	Op   string
	L, R Expr
}

func (b BinOp) render(sb *strings.Builder) {
	p := precedence(b.Op)
	renderOperand(sb, b.L, p, false)
	sb.WriteString(b.Op)
	renderOperand(sb, b.R, p, true)
}

func renderOperand(sb *strings.Builder, e Expr, parent int, right bool) {
	inner, ok := e.(BinOp)
	if !ok {
		e.render(sb)
		return
	}
	p := precedence(inner.Op)
	if p < parent || (right && p == parent) {
		sb.WriteByte('(')
		inner.render(sb)
		sb.WriteByte(')')
		return
	}
	inner.render(sb)
}

func precedence(op string) int {
	switch op {
	case "=", "<>", "<", ">", "<=", ">=":
		return 1
	case "&":
		return 2
	case "+", "-":
		return 3
	case "*", "/":
		return 4
	}
	return 0
}

func writeSheetPrefix(sb *strings.Builder, sheet string) {
	if sheet == "" {
		return
	}
	if strings.ContainsAny(sheet, " -'") {
		sb.WriteByte('\'')
		sb.WriteString(strings.ReplaceAll(sheet, "'", "''"))
		sb.WriteString("'!")
		return
	}
	sb.WriteString(sheet)
	sb.WriteByte('!')
}

// absolute turns "B2" into "$B$2".
func absolute(cell string) string {
	i := strings.IndexFunc(cell, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return cell
	}
	return "$" + cell[:i] + "$" + cell[i:]
}

// =============================================================================
// Constructors
// =============================================================================

func Fn(name string, args ...Expr) Call {
	return Call{Fn: name, Args: args}
}

func Eq(l, r Expr) BinOp  { return BinOp{Op: "=", L: l, R: r} }
func Mul(l, r Expr) BinOp { return BinOp{Op: "*", L: l, R: r} }
func Div(l, r Expr) BinOp { return BinOp{Op: "/", L: l, R: r} }
func Sub(l, r Expr) BinOp { return BinOp{Op: "-", L: l, R: r} }

// Sum folds terms left to right with "+". It returns Num(0) for no terms.
func Sum(terms ...Expr) Expr {
	if len(terms) == 0 {
		return Num(0)
	}
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = BinOp{Op: "+", L: acc, R: t}
	}
	return acc
}

// Cell formats a column letter and 1-indexed row as "B3".
func Cell(col string, row int) string {
	return col + strconv.Itoa(row)
}
