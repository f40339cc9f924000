package pe

import (
	"fmt"
	"io"
)

// CodeCave is a run of padding bytes inside a section's raw data.
type CodeCave struct {
	Section  string // Section name.
	Offset   uint32 // File offset.
	RVA      uint32 // Relative Virtual Address.
	Size     uint32 // Run length in bytes.
	FillByte byte   // Fill pattern (0x00 or 0xCC).
}

// CodeCaveDetector finds padding runs in a parsed file's sections.
type CodeCaveDetector struct {
	input io.ReadSeeker
	file  *File
}

// NewCodeCaveDetector creates a new code cave detector.
func NewCodeCaveDetector(input io.ReadSeeker, f *File) *CodeCaveDetector {
	return &CodeCaveDetector{
		input: input,
		file:  f,
	}
}

// FindCodeCaves scans every section for runs of at least minSize bytes of
// 0x00 or 0xCC. Sections whose raw data is cut short by the end of the file
// are an error.
func (d *CodeCaveDetector) FindCodeCaves(minSize uint32) ([]CodeCave, error) {
	var caves []CodeCave

	for _, h := range d.file.Sections {
		if h.SizeOfRawData == 0 {
			continue
		}
		data, err := SectionData(d.input, h)
		if err != nil {
			return nil, fmt.Errorf("扫描节区 %s 失败: %w", h.Name, err)
		}
		caves = append(caves, findInSection(h, data, minSize)...)
	}

	return caves, nil
}

func findInSection(h SectionHeader, data []byte, minSize uint32) []CodeCave {
	var caves []CodeCave
	caveStart := -1
	var fillByte byte

	flush := func(end int) {
		if caveStart != -1 && uint32(end-caveStart) >= minSize {
			caves = append(caves, CodeCave{
				Section:  h.Name.String(),
				Offset:   h.PointerToRawData + uint32(caveStart),
				RVA:      h.VirtualAddress + uint32(caveStart),
				Size:     uint32(end - caveStart),
				FillByte: fillByte,
			})
		}
	}

	for i, b := range data {
		switch {
		case b != 0x00 && b != 0xCC:
			flush(i)
			caveStart = -1
		case caveStart == -1:
			caveStart, fillByte = i, b
		case b != fillByte:
			// Switching between 0x00 and 0xCC starts a new run.
			flush(i)
			caveStart, fillByte = i, b
		}
	}
	flush(len(data))

	return caves
}
