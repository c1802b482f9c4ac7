package tui

const unknownViewType = "unknown"

// ViewType represents which tab is active.
type ViewType int

const (
	ViewBoard ViewType = iota
	ViewTasks
	ViewInsights
	ViewMetrics
)

// Views lists the tabs in display order.
var Views = []ViewType{ViewBoard, ViewTasks, ViewInsights, ViewMetrics}

// String returns the lowercase name of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewBoard:
		return "board"
	case ViewTasks:
		return "tasks"
	case ViewInsights:
		return "insights"
	case ViewMetrics:
		return "metrics"
	default:
		return unknownViewType
	}
}

// Title is the tab label.
func (v ViewType) Title() string {
	switch v {
	case ViewBoard:
		return "Board"
	case ViewTasks:
		return "Tasks"
	case ViewInsights:
		return "Insights"
	case ViewMetrics:
		return "Metrics"
	default:
		return unknownViewType
	}
}

// Next returns the tab after v, wrapping around.
func (v ViewType) Next() ViewType {
	return Views[(int(v)+1)%len(Views)]
}

// Prev returns the tab before v, wrapping around.
func (v ViewType) Prev() ViewType {
	return Views[(int(v)+len(Views)-1)%len(Views)]
}
