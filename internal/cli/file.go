package cli

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/ZacharyZcR/secextract/internal/pe"
)

// AnalyzeFile parses the PE file at path and builds its Info view with
// per-section entropy.
func AnalyzeFile(fs afero.Fs, path string) (*pe.Info, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer func() { _ = f.Close() }()

	peFile, err := pe.Parse(f)
	if err != nil {
		return nil, err
	}

	analyzer := pe.NewAnalyzer(peFile, f)
	analyzer.SetEntropy(true)
	return analyzer.Analyze()
}

// ExtractFile writes the raw data of the named section of the PE file at
// path to out. It returns the number of bytes written.
func ExtractFile(fs afero.Fs, path, section string, out io.Writer) (uint32, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("打开文件失败: %w", err)
	}
	defer func() { _ = f.Close() }()

	peFile, err := pe.Parse(f)
	if err != nil {
		return 0, err
	}

	h, err := peFile.Section(section)
	if err != nil {
		return 0, err
	}
	if err := pe.ExtractSection(f, out, *h); err != nil {
		return 0, err
	}
	return h.SizeOfRawData, nil
}
