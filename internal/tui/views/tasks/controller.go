// Package tasks renders the task list with multi-select for bulk actions.
package tasks

import (
	"slices"

	"github.com/colonyops/runway/internal/core/crm"
)

// Controller holds the task list, the cursor and the marked set.
type Controller struct {
	tasks    []crm.Task
	cursor   int
	offset   int
	visible  int
	marked   map[string]struct{}
	selected string
}

func NewController() *Controller {
	return &Controller{marked: make(map[string]struct{}), visible: 10}
}

// SetTasks replaces the list, keeping the cursor on the selected task and
// forgetting marks on tasks that are gone.
func (c *Controller) SetTasks(tasks []crm.Task) {
	c.tasks = tasks
	for id := range c.marked {
		if !slices.ContainsFunc(tasks, func(t crm.Task) bool { return t.ID == id }) {
			delete(c.marked, id)
		}
	}
	if i := slices.IndexFunc(tasks, func(t crm.Task) bool { return t.ID == c.selected }); i >= 0 {
		c.cursor = i
	}
	c.clamp()
}

// SetSize sets the number of visible rows.
func (c *Controller) SetSize(rows int) {
	c.visible = max(rows, 1)
	c.clamp()
}

func (c *Controller) Up() {
	c.cursor--
	c.clamp()
}

func (c *Controller) Down() {
	c.cursor++
	c.clamp()
}

// Selected returns the task under the cursor.
func (c *Controller) Selected() (crm.Task, bool) {
	if c.cursor < 0 || c.cursor >= len(c.tasks) {
		return crm.Task{}, false
	}
	return c.tasks[c.cursor], true
}

// ToggleMark marks or unmarks the task under the cursor.
func (c *Controller) ToggleMark() {
	t, ok := c.Selected()
	if !ok {
		return
	}
	if _, marked := c.marked[t.ID]; marked {
		delete(c.marked, t.ID)
	} else {
		c.marked[t.ID] = struct{}{}
	}
}

func (c *Controller) IsMarked(id string) bool {
	_, ok := c.marked[id]
	return ok
}

// Targets returns the marked task IDs in list order, or the task under the
// cursor when nothing is marked.
func (c *Controller) Targets() []string {
	var ids []string
	for _, t := range c.tasks {
		if c.IsMarked(t.ID) {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		if t, ok := c.Selected(); ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// ClearMarks unmarks every task.
func (c *Controller) ClearMarks() {
	clear(c.marked)
}

// Visible returns the window of tasks to draw and the cursor index within it.
func (c *Controller) Visible() ([]crm.Task, int) {
	end := min(c.offset+c.visible, len(c.tasks))
	return c.tasks[c.offset:end], c.cursor - c.offset
}

func (c *Controller) Len() int {
	return len(c.tasks)
}

func (c *Controller) clamp() {
	c.cursor = max(min(c.cursor, len(c.tasks)-1), 0)
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.visible {
		c.offset = c.cursor - c.visible + 1
	}
	c.offset = max(min(c.offset, len(c.tasks)-c.visible), 0)

	c.selected = ""
	if t, ok := c.Selected(); ok {
		c.selected = t.ID
	}
}
