package genai

import (
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/runway/internal/core/crm"
)

// PipelineSummary describes deals and tasks in plain text for an insights
// request.
func PipelineSummary(deals []crm.Deal, tasks []crm.Task, now time.Time) string {
	var b strings.Builder
	for _, s := range crm.Pipeline(deals) {
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: %d deals worth %.0f (weighted %.0f)\n", s.Stage.Title(), s.Count, s.Value, s.Weighted)
	}

	open, overdue := 0, 0
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		open++
		if t.Overdue(now) {
			overdue++
		}
	}
	fmt.Fprintf(&b, "- Tasks: %d open, %d overdue\n", open, overdue)
	return b.String()
}

// EmailForDeal prefills a follow-up email request for a deal.
func EmailForDeal(d crm.Deal, c crm.Customer) EmailRequest {
	recipient := c.Name
	if recipient == "" {
		recipient = "there"
	}
	return EmailRequest{
		Recipient: recipient,
		Company:   c.Company,
		Purpose:   fmt.Sprintf("Next steps on %s", d.Title),
		Tone:      "friendly",
		Context:   fmt.Sprintf("The deal is currently in %s.", d.Stage.Title()),
	}
}
