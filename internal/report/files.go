// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/daily-scholar/pkg/types"
)

// Paths lists the files written for one run.
type Paths struct {
	CSV  string
	HTML string
}

// WriteFiles writes top10_<date>.csv and report_<stamp>.html into dir, where
// stamp is a Stamp value and date its YYYYMMDD prefix.
func WriteFiles(dir, stamp string, rep *Report) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, &RenderError{Op: "mkdir", Path: dir, Err: err}
	}
	date, _, _ := strings.Cut(stamp, "_")

	p := Paths{
		CSV:  filepath.Join(dir, fmt.Sprintf("top10_%s.csv", date)),
		HTML: filepath.Join(dir, fmt.Sprintf("report_%s.html", stamp)),
	}
	if err := writeFileAtomic(p.CSV, rep.CSV); err != nil {
		return Paths{}, &RenderError{Op: "write", Path: p.CSV, Err: err}
	}
	if err := writeFileAtomic(p.HTML, rep.HTML); err != nil {
		return Paths{}, &RenderError{Op: "write", Path: p.HTML, Err: err}
	}
	return p, nil
}

// WriteAnalyses writes analysis_<stamp>.json with the results in the given
// order and returns its path.
func WriteAnalyses(dir, stamp string, results []*types.AnalysisResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &RenderError{Op: "mkdir", Path: dir, Err: err}
	}
	if results == nil {
		results = []*types.AnalysisResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", &RenderError{Op: "encode", Err: err}
	}
	path := filepath.Join(dir, fmt.Sprintf("analysis_%s.json", stamp))
	if err := writeFileAtomic(path, data); err != nil {
		return "", &RenderError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
