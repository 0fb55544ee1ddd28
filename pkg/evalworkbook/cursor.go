package evalworkbook

// Cursor is the running row position of one sheet under construction.
// Each sheet step owns its own Cursor; it only moves forward unless Reset.
type Cursor struct {
	row int
}

// NewCursor starts a cursor at the given 1-indexed row.
func NewCursor(start int) *Cursor {
	if start < 1 {
		start = 1
	}
	return &Cursor{row: start}
}

// Row returns the next free row.
func (c *Cursor) Row() int {
	return c.row
}

// Next returns the current row and moves past it.
func (c *Cursor) Next() int {
	r := c.row
	c.row++
	return r
}

// Take reserves n consecutive rows and returns their span.
func (c *Cursor) Take(n int) RowSpan {
	if n < 1 {
		n = 1
	}
	span := RowSpan{First: c.row, Last: c.row + n - 1}
	c.row += n
	return span
}

// Advance skips n rows. Negative values are ignored.
func (c *Cursor) Advance(n int) {
	if n > 0 {
		c.row += n
	}
}

// Reset moves the cursor to row, forward or backward.
func (c *Cursor) Reset(row int) {
	if row < 1 {
		row = 1
	}
	c.row = row
}
