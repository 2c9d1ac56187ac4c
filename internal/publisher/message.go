package publisher

import (
	"fmt"
	"strings"

	"autoremedy/internal/model"
)

// CommitMessage renders the subject and body for a set of patch records.
func CommitMessage(records []model.PatchRecord, event model.WebhookEvent) (string, string) {
	tokens := make([]string, 0, len(records))
	var body strings.Builder
	for _, r := range records {
		tokens = append(tokens, r.Action.Token)
		fmt.Fprintf(&body, "- %s: %s\n", r.Action.Reason, r.Action.Token)
	}

	subject := "fix(deps): add " + strings.Join(tokens, ", ")

	body.WriteString("\n")
	fmt.Fprintf(&body, "Triggered by %s %s", event.Source, event.Kind)
	if event.DeliveryID != "" {
		fmt.Fprintf(&body, " (delivery %s)", event.DeliveryID)
	}
	if event.Repository != "" {
		fmt.Fprintf(&body, " for %s", event.Repository)
	}
	body.WriteString(".")
	if event.URL != "" {
		fmt.Fprintf(&body, "\n%s", event.URL)
	}
	if event.ID != "" {
		fmt.Fprintf(&body, "\nEvent-ID: %s", event.ID)
	}

	return subject, body.String()
}
