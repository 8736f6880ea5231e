package task

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders t as a markdown document for the detail views. The
// description is included verbatim so authors can use markdown in it.
func (t Task) Markdown(now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "| Status | Priority | Due |\n|---|---|---|\n")
	due := t.DueText(now)
	if !t.DueDate.IsZero() {
		due = t.DueDate.Format("Jan 2, 2006") + " (" + due + ")"
	}
	fmt.Fprintf(&b, "| %s | %s | %s |\n\n", t.Status.Humanize(), t.Priority.Humanize(), due)

	if t.AssignedToUsername != "" {
		fmt.Fprintf(&b, "Assigned to **%s**\n\n", t.AssignedToUsername)
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n")
	} else {
		b.WriteString("_No description._\n")
	}

	return b.String()
}
