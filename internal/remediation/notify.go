package remediation

import (
	"context"
	"fmt"
	"strings"

	"autoremedy/internal/model"
)

// notify reports a terminal outcome that had findings. Delivery errors are logged only.
func (uc *usecase) notify(ctx context.Context, event model.WebhookEvent, out Outcome) {
	if uc.sender == nil || uc.opts.ChatID == 0 || len(out.Findings) == 0 {
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	defer cancel()

	if err := uc.sender.SendMessage(nctx, uc.opts.ChatID, FormatNotification(event, out)); err != nil {
		uc.l.Warnf(ctx, "remediation.notify: failed to send notification: %v", err)
	}
}

// FormatNotification renders an outcome as a plain text chat message.
func FormatNotification(event model.WebhookEvent, out Outcome) string {
	var sb strings.Builder

	if out.State == model.StateFailed {
		fmt.Fprintf(&sb, "❌ Build remediation failed (%s)\n", out.Reason)
	} else {
		sb.WriteString("✅ Build remediation done\n")
	}

	fmt.Fprintf(&sb, "Source: %s %s", event.Source, event.Kind)
	if event.Repository != "" {
		fmt.Fprintf(&sb, " · %s", event.Repository)
	}
	sb.WriteString("\n")
	if event.URL != "" {
		fmt.Fprintf(&sb, "Run: %s\n", event.URL)
	}
	fmt.Fprintf(&sb, "Event: %s\n", out.EventID)
	fmt.Fprintf(&sb, "Signatures: %s\n", strings.Join(out.SignatureIDs(), ", "))

	if tokens := out.Tokens(); len(tokens) > 0 {
		fmt.Fprintf(&sb, "Added: %s\n", strings.Join(tokens, ", "))
	}
	if out.CommitHash != "" {
		fmt.Fprintf(&sb, "Commit: %s\n", shortHash(out.CommitHash))
	}
	if out.Message != "" {
		fmt.Fprintf(&sb, "Result: %s\n", out.Message)
	}
	if len(out.Warnings) > 0 {
		sb.WriteString("Needs attention:\n")
		for _, w := range out.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
