package ui

// Cursor is the keyboard-focused row of a filtered list. Index is -1 when
// no row is focused and never leaves [-1, length-1].
type Cursor struct {
	index  int
	length int

	// viewport is the number of rows that fit on screen; offset is the
	// first visible row.
	viewport int
	offset   int
}

// NewCursor returns a cursor over length rows with nothing selected.
func NewCursor(length int) *Cursor {
	c := &Cursor{index: -1}
	c.SetLength(length)
	return c
}

// Index returns the selected row, or -1.
func (c *Cursor) Index() int {
	return c.index
}

// Len returns the length of the list the cursor is over.
func (c *Cursor) Len() int {
	return c.length
}

// Selected reports whether a row is focused.
func (c *Cursor) Selected() bool {
	return c.index >= 0
}

// SetLength updates the list length and pulls the index back inside it.
func (c *Cursor) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	c.length = n
	if c.index > n-1 {
		c.index = n - 1
	}
	c.ensureSelectedVisible()
}

// MoveDown focuses the next row, stopping at the last one. On an empty list
// the index stays -1.
func (c *Cursor) MoveDown() {
	if c.length == 0 {
		c.index = -1
		return
	}
	c.index = min(c.index+1, c.length-1)
	c.ensureSelectedVisible()
}

// MoveUp focuses the previous row, stopping at the first. From -1 it lands
// on row 0, the same as MoveDown. On an empty list the index stays -1.
func (c *Cursor) MoveUp() {
	if c.length == 0 {
		c.index = -1
		return
	}
	c.index = max(c.index-1, 0)
	c.ensureSelectedVisible()
}

// Reset clears the selection and scrolls back to the top.
func (c *Cursor) Reset() {
	c.index = -1
	c.offset = 0
}

// Select focuses row i if it exists.
func (c *Cursor) Select(i int) bool {
	if i < -1 || i >= c.length {
		return false
	}
	c.index = i
	c.ensureSelectedVisible()
	return true
}

// Activate returns the focused row of list. It does not modify the cursor.
func Activate[T any](c *Cursor, list []T) (T, bool) {
	var zero T
	if c == nil || c.index < 0 || c.index >= len(list) {
		return zero, false
	}
	return list[c.index], true
}

// SetViewport sets how many rows fit on screen. Zero disables scrolling.
func (c *Cursor) SetViewport(rows int) {
	if rows < 0 {
		rows = 0
	}
	c.viewport = rows
	c.ensureSelectedVisible()
}

// Offset returns the first row to draw.
func (c *Cursor) Offset() int {
	return c.offset
}

// Window returns the half-open range of rows to draw.
func (c *Cursor) Window() (start, end int) {
	if c.viewport == 0 {
		return 0, c.length
	}
	return c.offset, min(c.offset+c.viewport, c.length)
}

// ensureSelectedVisible scrolls only as far as needed to keep the selected
// row on screen.
func (c *Cursor) ensureSelectedVisible() {
	if c.viewport == 0 || c.length <= c.viewport {
		c.offset = 0
		return
	}
	if c.index >= 0 {
		if c.index < c.offset {
			c.offset = c.index
		}
		if c.index >= c.offset+c.viewport {
			c.offset = c.index - c.viewport + 1
		}
	}
	// Don't leave blank rows at the bottom after the list shrinks.
	if c.offset > c.length-c.viewport {
		c.offset = c.length - c.viewport
	}
	if c.offset < 0 {
		c.offset = 0
	}
}
