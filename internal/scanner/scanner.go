package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/spectrace/spectrace/internal/logger"
)

var log = logger.ForComponent("scanner")

// Options control one scan pass over a tree.
type Options struct {
	// Include globs, matched against slash-separated paths relative to the
	// root. Empty means include every file with a known dialect.
	Include []string
	// Exclude globs. A file matching any exclude is never read.
	Exclude []string
	// Workers bounds the per-file parallelism. Zero means NumCPU, capped.
	Workers int
	// MaxFileSize skips files larger than this many bytes. Zero means 10MiB.
	MaxFileSize int64
}

// Warning records a file that could not be scanned. The scan of the rest of
// the tree is unaffected.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Scan walks root and extracts all rule references from comment text in
// files matching the include/exclude globs. Each file's scan is independent
// and side-effect free; files are scanned in parallel and the merged result
// is normalized to (file, line, column) order. Unreadable files produce
// warnings, never a failed scan.
func Scan(root string, opts Options) ([]Reference, []Warning, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}

	paths := make(chan string, workers)

	var mu sync.Mutex
	var refs []Reference
	var warnings []Warning

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range paths {
				fileRefs, err := scanOne(root, rel, maxSize)
				mu.Lock()
				if err != nil {
					warnings = append(warnings, Warning{Path: rel, Err: err})
				} else {
					refs = append(refs, fileRefs...)
				}
				mu.Unlock()
			}
		}()
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rel := relPath(root, path)
			mu.Lock()
			warnings = append(warnings, Warning{Path: rel, Err: err})
			mu.Unlock()
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel := relPath(root, path)
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := DialectFor(path); !ok {
			return nil
		}
		if !matchesInclude(rel, opts.Include) || matchesAny(rel, opts.Exclude) {
			return nil
		}

		paths <- rel
		return nil
	})

	close(paths)
	wg.Wait()

	if walkErr != nil {
		return nil, warnings, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	SortReferences(refs)
	log.Debug("scan complete", "root", root, "references", len(refs), "warnings", len(warnings))
	return refs, warnings, nil
}

// ScanContent extracts references from one file body that is already in
// memory, using the dialect resolved from path. The returned references
// carry path as their file.
func ScanContent(path, content string) []Reference {
	d, ok := DialectFor(path)
	if !ok {
		return nil
	}

	var refs []Reference
	for _, span := range ExtractComments(content, d) {
		refs = append(refs, ParseMarkers(span.Text, path, span.Line)...)
	}
	return refs
}

// SortReferences normalizes display order: file, then line, then column.
func SortReferences(refs []Reference) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].File != refs[j].File {
			return refs[i].File < refs[j].File
		}
		if refs[i].Line != refs[j].Line {
			return refs[i].Line < refs[j].Line
		}
		return refs[i].Column < refs[j].Column
	})
}

func scanOne(root, rel string, maxSize int64) ([]Reference, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("file too large (%d bytes)", info.Size())
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}

	content, err := decodeContent(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return ScanContent(rel, content), nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func matchesInclude(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(rel, patterns)
}

func matchesAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
