package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/repodigest/internal/ignore"
	"github.com/fyrsmithlabs/repodigest/internal/logging"
	"github.com/fyrsmithlabs/repodigest/internal/scope"
	"go.uber.org/zap"
)

// defaultSkipDirs are directories that are never ingested. They hold
// generated code, dependencies, or version-control data.
var defaultSkipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	".cache":       true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"target":       true, // Rust/Java build output
}

const defaultMaxFileSize = 1024 * 1024 // 1MB

// fileSeparator banners each file section in the flattened content.
const fileSeparator = "================================================"

// LocalFetcher flattens a local file or directory tree into a Payload.
type LocalFetcher struct {
	log *logging.Logger
}

// NewLocalFetcher creates a local content fetcher.
func NewLocalFetcher(log *logging.Logger) *LocalFetcher {
	if log == nil {
		log = logging.Nop()
	}
	return &LocalFetcher{log: log}
}

// Fetch walks path and produces the summary, tree, and flattened content.
// A regular-file path ingests that single file.
func (f *LocalFetcher) Fetch(ctx context.Context, path string, opts FetchOptions) (*Payload, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &FetchError{Target: path, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, &FetchError{Target: path, Err: err}
	}

	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}

	if !info.IsDir() {
		return f.fetchFile(abs)
	}
	return f.fetchDir(ctx, abs, opts)
}

// fetchFile ingests a single regular file.
func (f *LocalFetcher) fetchFile(abs string) (*Payload, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &FetchError{Target: abs, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &FetchError{Target: abs, Err: fmt.Errorf("binary file cannot be ingested")}
	}

	name := filepath.Base(abs)
	content := renderFileSection(name, string(data))

	summary := summaryText("File: "+abs, scope.Branch(filepath.Dir(abs)), 1, HeuristicTokenizer{}.Count(content))
	return &Payload{
		Summary: summary,
		Tree:    name + "\n",
		Content: content,
	}, nil
}

// fetchDir walks a directory tree, filters files, and flattens survivors.
func (f *LocalFetcher) fetchDir(ctx context.Context, root string, opts FetchOptions) (*Payload, error) {
	excludes := append([]string(nil), opts.ExcludePatterns...)
	if !opts.IncludeIgnored {
		ignored, err := ignore.Patterns(root)
		if err != nil {
			return nil, &FetchError{Target: root, Err: fmt.Errorf("reading ignore files: %w", err)}
		}
		excludes = append(excludes, ignored...)
	}

	var (
		treeLines []string
		sections  []string
		files     uint64
		seenDirs  = make(map[string]bool)
	)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("computing relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if defaultSkipDirs[filepath.Base(path)] {
				return filepath.SkipDir
			}
			if matchesAny(excludes, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !shouldIncludeFile(rel, info.Size(), opts.IncludePatterns, excludes, opts.MaxFileSize) {
			f.log.Trace(ctx, "skipping file", zap.String("path", rel))
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading file %s: %w", rel, err)
		}

		// Binary files are skipped silently; the digest is text.
		if !utf8.Valid(data) {
			return nil
		}

		// Directories enter the tree only once they contain an ingested
		// file, so a restricted fetch lists only its own subtree and
		// empty directories never appear.
		for _, dir := range ancestorDirs(rel) {
			if !seenDirs[dir] {
				seenDirs[dir] = true
				treeLines = append(treeLines, treeEntry(dir, true))
			}
		}
		treeLines = append(treeLines, treeEntry(rel, false))
		sections = append(sections, renderFileSection(rel, string(data)))
		files++
		return nil
	})
	if err != nil {
		return nil, &FetchError{Target: root, Err: err}
	}

	content := strings.Join(sections, "")
	tree := filepath.Base(root) + "/\n" + strings.Join(treeLines, "")
	summary := summaryText("Directory: "+root, scope.Branch(root), files, HeuristicTokenizer{}.Count(content))

	f.log.Debug(ctx, "local fetch complete",
		zap.String("root", root),
		zap.Uint64("files", files))

	return &Payload{
		Summary: summary,
		Tree:    tree,
		Content: content,
	}, nil
}

// summaryText renders the semi-structured summary block.
func summaryText(header, branch string, files, tokens uint64) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	if branch != "" {
		fmt.Fprintf(&b, "Branch: %s\n", branch)
	}
	fmt.Fprintf(&b, "Files analyzed: %d\n", files)
	fmt.Fprintf(&b, "Estimated tokens: %s\n", HumanTokens(tokens))
	return b.String()
}

// renderFileSection banners one file's content.
func renderFileSection(rel, content string) string {
	var b strings.Builder
	b.WriteString(fileSeparator)
	b.WriteString("\nFILE: ")
	b.WriteString(rel)
	b.WriteString("\n")
	b.WriteString(fileSeparator)
	b.WriteString("\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// ancestorDirs lists rel's parent directories from the top down.
func ancestorDirs(rel string) []string {
	var dirs []string
	for i, c := range rel {
		if c == '/' {
			dirs = append(dirs, rel[:i])
		}
	}
	return dirs
}

// treeEntry indents a relative path by its depth; directories keep a
// trailing slash.
func treeEntry(rel string, isDir bool) string {
	depth := strings.Count(rel, "/")
	name := rel[strings.LastIndex(rel, "/")+1:]
	suffix := ""
	if isDir {
		suffix = "/"
	}
	return strings.Repeat("    ", depth+1) + name + suffix + "\n"
}

// shouldIncludeFile applies size, exclude, and include filters to a
// root-relative path. Excludes take precedence.
func shouldIncludeFile(rel string, size int64, includes, excludes []string, maxSize int64) bool {
	if size > maxSize {
		return false
	}

	if matchesAny(excludes, rel) {
		return false
	}

	if len(includes) > 0 && !matchesAny(includes, rel) {
		return false
	}

	return true
}

// matchesAny reports whether rel matches any pattern against its basename,
// its full relative path, or a "prefix/**" directory pattern.
//
// A "prefix/**" pattern is anchored at the root; only a leading "**/"
// (gitignore-derived bare names) lets the prefix float to any depth. Without
// the distinction, a restriction like "docs/api/**" would also pull in an
// identically named nested path elsewhere in the tree.
func matchesAny(patterns []string, rel string) bool {
	base := rel[strings.LastIndex(rel, "/")+1:]

	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if !strings.Contains(pattern, "**") {
			continue
		}

		prefix := strings.TrimSuffix(pattern, "/**")
		if floating := strings.HasPrefix(prefix, "**/"); floating {
			prefix = strings.TrimPrefix(prefix, "**/")
			if strings.Contains("/"+rel+"/", "/"+prefix+"/") {
				return true
			}
			continue
		}
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}
	return false
}
