package classifier

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"autoremedy/pkg/log"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher reloads a rule file into a RuleClassifier when the file changes.
// A file that fails to compile leaves the previous table in place.
type Watcher struct {
	path       string
	classifier *RuleClassifier
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	l          log.Logger
}

// NewWatcher watches the directory holding path so that editors which
// replace the file by rename are picked up too.
func NewWatcher(path string, c *RuleClassifier, l log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve rule file path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:       abs,
		classifier: c,
		watcher:    fw,
		debounce:   defaultDebounce,
		l:          l,
	}, nil
}

// SetDebounce overrides the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is cancelled. The underlying watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.l.Errorf(ctx, "internal.classifier.Watcher: %v", err)

		case <-pending:
			pending = nil
			w.Reload(ctx)
		}
	}
}

// Reload compiles the rule file and swaps it in. It reports whether the swap happened.
func (w *Watcher) Reload(ctx context.Context) bool {
	table, err := LoadRules(w.path)
	if err != nil {
		w.l.Errorf(ctx, "internal.classifier.Watcher: keeping previous rules: %v", err)
		return false
	}
	w.classifier.Swap(table)
	w.l.Infof(ctx, "internal.classifier.Watcher: reloaded %d rules from %s", table.Len(), w.path)
	return true
}
