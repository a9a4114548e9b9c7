package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary labels the extractor scans for. The fetchers here emit them, but
// the parse stays tolerant: any upstream producing roughly this shape works,
// and any parse failure leaves the field at zero instead of aborting.
const (
	filesLabel  = "Files analyzed:"
	tokensLabel = "Estimated tokens:"
)

// ExtractMetrics parses summary text for file and token counts.
//
// Token counts accept a bare integer or a human suffix ("3.5k", "1.2M").
// When the parsed token count is zero and content is non-empty, the count
// is recomputed with tok directly; a missing or reshaped summary must not
// block the pipeline. SizeBytes is left at zero; it belongs to the
// serialized report, not the fetch.
func ExtractMetrics(summary, content string, tok Tokenizer) Metrics {
	var m Metrics

	for _, line := range strings.Split(summary, "\n") {
		switch {
		case strings.Contains(line, filesLabel):
			if n, err := parseCount(line); err == nil {
				m.FileCount = n
			}
		case strings.Contains(line, tokensLabel):
			if n, err := parseTokenCount(line); err == nil {
				m.TokenCount = n
			}
		}
	}

	if m.TokenCount == 0 && content != "" && tok != nil {
		m.TokenCount = tok.Count(content)
	}

	return m
}

// parseCount reads a plain integer after the first colon.
func parseCount(line string) (uint64, error) {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return 0, fmt.Errorf("no value in %q", line)
	}
	return strconv.ParseUint(strings.TrimSpace(value), 10, 64)
}

// parseTokenCount reads an integer or a suffixed float ("28.9k", "1.2M")
// after the first colon. The float is scaled, then truncated.
func parseTokenCount(line string) (uint64, error) {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return 0, fmt.Errorf("no value in %q", line)
	}
	value = strings.TrimSpace(value)

	scale := 1.0
	switch {
	case strings.HasSuffix(value, "k"):
		scale = 1_000
		value = strings.TrimSuffix(value, "k")
	case strings.HasSuffix(value, "M"):
		scale = 1_000_000
		value = strings.TrimSuffix(value, "M")
	case strings.HasSuffix(value, "m"):
		scale = 1_000_000
		value = strings.TrimSuffix(value, "m")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative token count %q", value)
	}
	return uint64(f * scale), nil
}

// HumanTokens renders a token count the way summaries show it:
// "512", "28.9k", "1.2M".
func HumanTokens(n uint64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return strconv.FormatUint(n, 10)
	}
}

// HumanBytes renders a byte count with binary units: "1.25 KB".
func HumanBytes(n uint64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.2f PB", size)
}
