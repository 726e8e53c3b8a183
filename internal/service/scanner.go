package service

import (
	"context"
	"fmt"
	"os"

	"smellsense/internal/ensemble"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"
	"smellsense/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScanOptions control a directory scan
type ScanOptions struct {
	Root    string
	Workers int
	// ChangedOnly restricts the scan to files that differ from git HEAD
	ChangedOnly bool
	Save        bool
}

// FileVerdict is the verdict for one scanned file
type FileVerdict struct {
	Path     string            `json:"path"`
	Language syntax.Language   `json:"language"`
	Verdict  *ensemble.Verdict `json:"verdict"`
	RecordID string            `json:"record_id,omitempty"`
}

// Scan classifies every source file under opts.Root. Unreadable files are
// logged and skipped. Results are sorted by path.
func (s *SmellService) Scan(ctx context.Context, opts ScanOptions) ([]FileVerdict, error) {
	if opts.Save && s.history == nil {
		return nil, ErrHistoryDisabled
	}
	s.logger.Info("Scanning directory", zap.String("root", opts.Root), zap.Bool("changed_only", opts.ChangedOnly))

	walk := util.WalkOptions{MaxBytes: s.config.App.MaxFileBytes}
	if opts.ChangedOnly {
		info, err := util.GetGitInfo(ctx, opts.Root)
		if err != nil {
			return nil, err
		}
		if !info.IsGitRepo {
			return nil, fmt.Errorf("%s is not inside a git repository", opts.Root)
		}
		walk.Only = info.ChangedFiles
	}

	files, err := util.SourceFiles(ctx, opts.Root, s.registry.LanguageForPath, walk)
	if err != nil {
		return nil, fmt.Errorf("failed to list source files: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = s.config.App.NumWorkers
	}

	results := make([]*FileVerdict, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i, file := range files {
		g.Go(func() error {
			source, err := os.ReadFile(file.Path)
			if err != nil {
				s.logger.Warn("Skipping unreadable file", zap.String("path", file.RelPath), zap.Error(err))
				return nil
			}

			in := unit.Input{Source: string(source), Language: file.Language, Path: file.RelPath}
			verdict, record, err := s.Classify(gctx, in, opts.Save)
			if err != nil {
				if verdict == nil {
					return err
				}
				s.logger.Error("Failed to record verdict", zap.String("path", file.RelPath), zap.Error(err))
			}

			result := &FileVerdict{Path: file.RelPath, Language: file.Language, Verdict: verdict}
			if record != nil {
				result.RecordID = record.ID
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	verdicts := make([]FileVerdict, 0, len(results))
	for _, r := range results {
		if r != nil {
			verdicts = append(verdicts, *r)
		}
	}
	s.logger.Info("Completed scan", zap.Int("files", len(verdicts)))
	return verdicts, nil
}

// Tally counts scan results per primary smell
func Tally(verdicts []FileVerdict) map[smells.Kind]int {
	counts := make(map[smells.Kind]int)
	for _, v := range verdicts {
		counts[v.Verdict.PrimarySmell]++
	}
	return counts
}
