// Package board renders the deal pipeline as a kanban board.
package board

import (
	"slices"

	"github.com/colonyops/runway/internal/core/crm"
)

// Controller tracks the board columns and the cursor. It contains pure data
// logic with no Bubble Tea dependencies.
type Controller struct {
	columns [][]crm.Deal
	col     int
	row     int
	// selected is the ID under the cursor, kept so the cursor follows a deal
	// when the columns are rebuilt.
	selected string
}

func NewController() *Controller {
	return &Controller{columns: make([][]crm.Deal, len(crm.Stages))}
}

// SetDeals rebuilds the columns. The cursor stays on the selected deal when it
// is still on the board, otherwise it is clamped to the current column.
func (c *Controller) SetDeals(deals []crm.Deal) {
	c.columns = crm.Board(deals)
	if c.selected != "" && c.Follow(c.selected) {
		return
	}
	c.clamp()
}

// Follow moves the cursor to the deal with id. It reports whether the deal
// was found.
func (c *Controller) Follow(id string) bool {
	for ci, col := range c.columns {
		ri := slices.IndexFunc(col, func(d crm.Deal) bool { return d.ID == id })
		if ri >= 0 {
			c.col, c.row = ci, ri
			c.selected = id
			return true
		}
	}
	return false
}

func (c *Controller) Left() {
	if c.col > 0 {
		c.col--
		c.clamp()
	}
}

func (c *Controller) Right() {
	if c.col < len(c.columns)-1 {
		c.col++
		c.clamp()
	}
}

func (c *Controller) Up() {
	if c.row > 0 {
		c.row--
		c.clamp()
	}
}

func (c *Controller) Down() {
	if c.row < len(c.columns[c.col])-1 {
		c.row++
		c.clamp()
	}
}

// Selected returns the deal under the cursor.
func (c *Controller) Selected() (crm.Deal, bool) {
	col := c.columns[c.col]
	if c.row < 0 || c.row >= len(col) {
		return crm.Deal{}, false
	}
	return col[c.row], true
}

// Column returns the index of the focused column.
func (c *Controller) Column() int {
	return c.col
}

// Row returns the index of the cursor within the focused column.
func (c *Controller) Row() int {
	return c.row
}

// Columns returns the deals per stage in board order.
func (c *Controller) Columns() [][]crm.Deal {
	return c.columns
}

func (c *Controller) clamp() {
	n := len(c.columns[c.col])
	switch {
	case n == 0:
		c.row = 0
		c.selected = ""
		return
	case c.row >= n:
		c.row = n - 1
	case c.row < 0:
		c.row = 0
	}
	c.selected = c.columns[c.col][c.row].ID
}
