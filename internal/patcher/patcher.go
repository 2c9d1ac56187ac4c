package patcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"autoremedy/internal/manifest"
	"autoremedy/internal/model"
)

var jekyllLine = regexp.MustCompile(`^\s*gem\s*\(?\s*["']jekyll["']`)

// Apply adds every not-yet-declared payload to the marker section of path.
// It returns one record per line added and does not touch the file when
// nothing changes.
func (p *implPatcher) Apply(ctx context.Context, path string, actions []model.RemediationAction) ([]model.PatchRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestMissing, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrWriteError, path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrWriteError, path, err)
	}
	content := string(raw)

	var (
		lines   []string
		records []model.PatchRecord
	)
	added := make(map[string]bool)
	for _, a := range actions {
		if a.IsNoop() || added[a.Token] {
			continue
		}
		if manifest.Declares(content, a.Token) {
			p.l.Debugf(ctx, "patcher.Apply: %s already declares %q", path, a.Token)
			continue
		}
		added[a.Token] = true
		lines = append(lines, a.Payload)
		records = append(records, model.PatchRecord{
			Action:     a,
			AppliedAt:  p.now().UTC(),
			ResultDiff: "+" + a.Payload,
		})
	}

	if len(lines) == 0 {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	updated := insertSection(content, lines)
	if err := writeAtomic(path, []byte(updated), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteError, err)
	}

	p.l.Infof(ctx, "patcher.Apply: added %d declaration(s) to %s", len(records), path)
	return records, nil
}

// insertSection places lines at the end of the marker section, creating the
// section after the jekyll declaration or at end of file when missing.
func insertSection(content string, lines []string) string {
	trailingNL := content == "" || strings.HasSuffix(content, "\n")
	src := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if content == "" {
		src = nil
	}

	// existing section: insert before the end marker
	for i, l := range src {
		if strings.TrimSpace(l) != MarkerEnd {
			continue
		}
		if sectionStart(src[:i]) < 0 {
			continue
		}
		out := make([]string, 0, len(src)+len(lines))
		out = append(out, src[:i]...)
		out = append(out, lines...)
		out = append(out, src[i:]...)
		return join(out, trailingNL)
	}

	// begin marker whose end marker was lost: close that section instead of opening another
	if b := sectionStart(src); b >= 0 {
		last := b
		for last+1 < len(src) && manifest.DeclaredName(src[last+1]) != "" {
			last++
		}
		out := make([]string, 0, len(src)+len(lines)+1)
		out = append(out, src[:last+1]...)
		out = append(out, lines...)
		out = append(out, MarkerEnd)
		out = append(out, src[last+1:]...)
		return join(out, trailingNL)
	}

	section := make([]string, 0, len(lines)+2)
	section = append(section, MarkerBegin)
	section = append(section, lines...)
	section = append(section, MarkerEnd)

	for i, l := range src {
		if jekyllLine.MatchString(l) {
			out := make([]string, 0, len(src)+len(section))
			out = append(out, src[:i+1]...)
			out = append(out, section...)
			out = append(out, src[i+1:]...)
			return join(out, trailingNL)
		}
	}

	out := append(src, section...)
	return join(out, true)
}

func sectionStart(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == MarkerBegin {
			return i
		}
	}
	return -1
}

func join(lines []string, trailingNL bool) string {
	s := strings.Join(lines, "\n")
	if trailingNL {
		s += "\n"
	}
	return s
}

// writeAtomic writes data to a temp file next to path, syncs it and renames it
// over path with the given mode.
func writeAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
