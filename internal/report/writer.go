package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout orders digests lexicographically by creation time.
const timestampLayout = "20060102-150405"

// Writer persists rendered digests under a directory, one file per digest,
// named {digest}-{timestamp}.{ext}.
type Writer struct {
	// Dir is created on first write if missing.
	Dir string

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// Write renders res and writes it. Returns the full path of the new file.
func (w *Writer) Write(name, rendered string, format Format) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	filename := fmt.Sprintf("%s-%s.%s", name, now().Format(timestampLayout), format.Extension())
	path := filepath.Join(w.Dir, filename)

	if err := os.WriteFile(path, []byte(rendered), 0644); err != nil {
		return "", fmt.Errorf("writing digest: %w", err)
	}

	return path, nil
}
