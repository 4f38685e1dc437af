package enlistment

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ZacharyHenkel/ifc/internal/logger"
	"github.com/ZacharyHenkel/ifc/pkg/ifc"
)

// Processor runs the rewrite over IFC files, one file at a time.
type Processor struct {
	Rules Rules
	Log   logger.Logger
}

// FileResult records the outcome for a single input file.
type FileResult struct {
	Path      string `json:"path"`
	Rewritten int    `json:"rewritten"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

// Report is the outcome of a whole run.
type Report struct {
	RunID    string       `json:"run_id"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Files    []FileResult `json:"files"`
	Failed   int          `json:"failed"`
}

// ProcessFile maps one IFC file read-write, validates it with an
// integrity check, rewrites every eligible source-file path in place
// and reseals the content hash before the mapping is released.
//
// A file without a source-file partition is a successful no-op. Any
// failure aborts the file; the reseal in the unwind path guarantees
// that a partially rewritten file is never left sealed with a stale
// hash.
func (p *Processor) ProcessFile(path string) (res FileResult, err error) {
	res = FileResult{Path: path}

	f, err := ifc.Open(path)
	if err != nil {
		return res, err
	}
	mutated := false
	defer func() {
		// Resealing must be the last mutation before unmap, on every
		// exit path.
		if mutated {
			f.ResetContentHash()
		}
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%s: %w", path, cerr)
		}
	}()

	if err := f.Validate(ifc.SortPrimary, ifc.ArchUnknown, ifc.IntegrityCheck); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	part, ok := f.PartitionByName(ifc.SourceFilePartition)
	if !ok {
		return res, nil
	}
	records, err := f.SourceFiles(part)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	for _, rec := range records {
		if rec.Path == 0 {
			res.Skipped++
			continue
		}
		stored, err := f.String(rec.Path)
		if err != nil {
			return res, fmt.Errorf("%s: source-file record: %w", path, err)
		}
		rewritten, ok, err := p.Rules.Rewrite(stored)
		if err != nil {
			return res, fmt.Errorf("%s: %q: %w", path, stored, err)
		}
		if !ok {
			res.Skipped++
			continue
		}
		if err := f.SetString(rec.Path, rewritten); err != nil {
			return res, fmt.Errorf("%s: %q: %w", path, stored, err)
		}
		mutated = true
		res.Rewritten++
	}
	return res, nil
}

// Run processes each file in order. Per-file failures are logged and
// recorded in the report; processing continues with the next file.
func (p *Processor) Run(paths []string) Report {
	rep := Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}
	for _, path := range paths {
		res, err := p.ProcessFile(path)
		if err != nil {
			res.Error = err.Error()
			rep.Failed++
			if errors.Is(err, ifc.ErrArchMismatch) {
				p.Log.Error("ifc architecture mismatch", "file", path)
			} else {
				p.Log.Error("processing failed", "file", path, "error", err)
			}
		} else {
			p.Log.Info("processed", "file", path, "rewritten", res.Rewritten, "skipped", res.Skipped)
		}
		rep.Files = append(rep.Files, res)
	}
	rep.Finished = time.Now().UTC()
	return rep
}

// WriteJSON stores the report at path.
func (r Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
