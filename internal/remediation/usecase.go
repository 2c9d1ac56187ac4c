package remediation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"autoremedy/internal/model"
	"autoremedy/internal/publisher"
	pkgLog "autoremedy/pkg/log"
)

const msgNothingChange = "nothing to change"

// Process runs the event to a terminal state.
func (uc *usecase) Process(ctx context.Context, event model.WebhookEvent) Outcome {
	ctx = pkgLog.WithFields(context.WithoutCancel(ctx), "event_id", event.ID, "source", string(event.Source))
	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	out := newOutcome(event.ID)
	uc.run(ctx, event, out)

	if out.State == model.StateFailed {
		uc.l.Errorf(ctx, "remediation.Process: failed reason=%s signatures=%v: %s", out.Reason, out.SignatureIDs(), out.Message)
	} else {
		uc.l.Infof(ctx, "remediation.Process: done: %s", out.Message)
	}

	uc.notify(ctx, event, *out)
	return *out
}

func (uc *usecase) run(ctx context.Context, event model.WebhookEvent, out *Outcome) {
	out.advance(model.StateClassifying)

	text := event.ErrorText
	if event.NeedsLogFetch() {
		if uc.logs == nil {
			out.fail(model.ReasonLogUnavailable, "no log fetcher configured")
			return
		}
		fetched, err := uc.logs.FetchFailedLogs(ctx, event.LogRef.Repository, event.LogRef.RunID)
		if err != nil {
			out.fail(reasonFor(ctx, err), fmt.Sprintf("failed to fetch build log: %v", err))
			return
		}
		text = fetched
	}

	out.Findings = append(out.Findings, uc.classifier.Classify(text)...)
	if len(out.Findings) == 0 {
		out.done(ErrNoSignatureMatch.Error())
		return
	}

	out.advance(model.StatePlanning)

	path := uc.manifestPath()
	unlock, err := uc.locks.LockContext(ctx, path)
	if err != nil {
		out.fail(reasonFor(ctx, err), fmt.Sprintf("timed out waiting for %s: %v", path, err))
		return
	}
	defer unlock()

	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		out.fail(model.ReasonInternal, fmt.Sprintf("%v: %v", ErrManifestRead, err))
		return
	}

	plan := uc.planner.Plan(out.Findings, string(content), uc.opts.Manifest)
	out.Actions = append(out.Actions, plan.Actions...)
	out.Warnings = append(out.Warnings, plan.Warnings...)
	if !plan.HasChanges() {
		out.done(msgNothingChange)
		return
	}

	out.advance(model.StatePatching)

	records, err := uc.patcher.Apply(ctx, path, plan.Inserts())
	if err != nil {
		out.fail(reasonFor(ctx, err), err.Error())
		return
	}
	out.Records = append(out.Records, records...)
	if len(records) == 0 {
		out.done(msgNothingChange)
		return
	}

	out.advance(model.StatePublishing)

	res, err := uc.publisher.Publish(ctx, publisher.Request{
		ManifestPath: path,
		Records:      records,
		Warnings:     plan.Warnings,
		Event:        event,
	})
	out.CommitHash = res.CommitHash
	if err != nil {
		out.fail(reasonFor(ctx, err), err.Error())
		return
	}

	out.done(fmt.Sprintf("added %s", strings.Join(out.Tokens(), ", ")))
}
