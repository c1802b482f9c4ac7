package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconDeal      = "" // money
	IconTask      = "" // tasks
	IconInsight   = "" // lightbulb
	IconMetrics   = "" // line chart
	IconCheck     = ""
	IconUnchecked = ""
	IconMarked    = ""
	IconCursor    = "▸"
	IconPending   = "" // hourglass
)

// Notification icons
var (
	IconNotifyInfo    = ""
	IconNotifyWarning = ""
	IconNotifyError   = ""
)

// Insight kinds
var (
	IconOpportunity = "" // rocket
	IconRisk        = ""
)
