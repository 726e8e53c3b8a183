package util

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"smellsense/internal/syntax"
)

// SourceFile is a file selected for classification
type SourceFile struct {
	Path     string // absolute
	RelPath  string // relative to the scan root
	Language syntax.Language
}

// LanguageFunc maps a path to its language
type LanguageFunc func(path string) (syntax.Language, bool)

var skipDirs = map[string]struct{}{
	"node_modules":  {},
	"vendor":        {},
	"__pycache__":   {},
	"venv":          {},
	"build":         {},
	"dist":          {},
	"target":        {},
	"out":           {},
	".mypy_cache":   {},
	".pytest_cache": {},
}

// WalkOptions narrow a source walk
type WalkOptions struct {
	// MaxBytes skips larger files when positive
	MaxBytes int64
	// Only keeps files present in this set of absolute paths when non-nil
	Only map[string]bool
}

// SourceFiles lists the files under root that languageOf recognizes, sorted
// by relative path. Hidden entries, well-known build directories and paths
// matched by the root .gitignore are skipped.
func SourceFiles(ctx context.Context, root string, languageOf LanguageFunc, opts WalkOptions) ([]SourceFile, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	gi := loadGitignore(root)

	var files []SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		rel := ToRelativePath(root, path)
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if opts.Only != nil && !opts.Only[path] {
			return nil
		}

		lang, ok := languageOf(path)
		if !ok {
			return nil
		}
		if opts.MaxBytes > 0 {
			info, err := d.Info()
			if err != nil || info.Size() > opts.MaxBytes {
				return nil
			}
		}

		files = append(files, SourceFile{Path: path, RelPath: filepath.ToSlash(rel), Language: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})
	return files, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
