package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

// ErrReportFormat is returned for report paths whose extension names no known
// encoding.
var ErrReportFormat = errors.New("unknown report format")

const compressedSuffix = ".lz4"

// ReportStore persists diff reports.
type ReportStore interface {
	SaveReports(path m.Path, reports []m.Report) error
	LoadReports(path m.Path) ([]m.Report, error)
}

// FileReportStore writes reports as JSON or YAML, picked by the file
// extension. A trailing .lz4 compresses the stream with an LZ4 frame.
type FileReportStore struct {
	fs afero.Fs
}

// NewReportStore returns a store on the operating system's file system.
func NewReportStore() *FileReportStore {
	return NewFileReportStore(afero.NewOsFs())
}

// NewFileReportStore returns a store on fs.
func NewFileReportStore(fs afero.Fs) *FileReportStore {
	return &FileReportStore{fs: fs}
}

type reportFormat struct {
	yaml       bool
	compressed bool
}

func formatOf(path m.Path) (reportFormat, error) {
	name := strings.ToLower(string(path))

	var f reportFormat
	if strings.HasSuffix(name, compressedSuffix) {
		f.compressed = true
		name = strings.TrimSuffix(name, compressedSuffix)
	}

	switch filepath.Ext(name) {
	case ".json":
	case ".yaml", ".yml":
		f.yaml = true
	default:
		return f, fmt.Errorf("%w: %s", ErrReportFormat, path)
	}

	return f, nil
}

// SaveReports writes reports to path, replacing any previous content.
func (s *FileReportStore) SaveReports(path m.Path, reports []m.Report) (err error) {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(string(path)); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := s.fs.Create(string(path))
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f

	var zw *lz4.Writer
	if format.compressed {
		zw = lz4.NewWriter(f)
		w = zw
	}

	if err := encodeReports(w, format, reports); err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("flush compressed reports: %w", err)
		}
	}

	return nil
}

func encodeReports(w io.Writer, format reportFormat, reports []m.Report) error {
	if format.yaml {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(reports); err != nil {
			return err
		}

		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(reports)
}

// LoadReports reads the reports stored at path.
func (s *FileReportStore) LoadReports(path m.Path) ([]m.Report, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}

	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if format.compressed {
		r = lz4.NewReader(f)
	}

	var reports []m.Report
	if format.yaml {
		err = yaml.NewDecoder(r).Decode(&reports)
	} else {
		err = json.NewDecoder(r).Decode(&reports)
	}

	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode reports %s: %w", path, err)
	}

	return reports, nil
}
