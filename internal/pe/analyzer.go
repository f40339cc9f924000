package pe

import (
	"debug/pe"
	"fmt"
	"io"
	"time"
)

// Optional header magic values.
const (
	MagicPE32     = 0x10b
	MagicPE32Plus = 0x20b
	MagicROM      = 0x107
)

// Info is a presentation view of a parsed PE file.
type Info struct {
	FileSize        int64
	Architecture    string
	ImageKind       string
	Timestamp       time.Time
	Characteristics uint16
	LinkerVersion   string
	EntryPoint      uint32
	BaseOfCode      uint32
	SizeOfCode      uint32
	Offsets         Offsets
	Sections        []SectionInfo
}

// SectionInfo contains information about a PE section.
type SectionInfo struct {
	Name            string
	VirtualAddress  uint32
	VirtualSize     uint32
	Offset          uint32
	Size            uint32
	Characteristics uint32
	Permissions     string
	// Truncated is set when the raw data runs past the end of the file.
	Truncated bool
	Entropy   float64
}

// Analyzer derives Info from a parsed file and its input stream.
type Analyzer struct {
	file    *File
	input   io.ReadSeeker
	entropy bool
}

// NewAnalyzer creates a new analyzer for the given file and the stream it
// was parsed from.
func NewAnalyzer(f *File, input io.ReadSeeker) *Analyzer {
	return &Analyzer{file: f, input: input}
}

// SetEntropy enables per-section entropy calculation.
func (a *Analyzer) SetEntropy(enabled bool) {
	a.entropy = enabled
}

// Analyze builds the Info view.
func (a *Analyzer) Analyze() (*Info, error) {
	r, err := NewReader(a.input)
	if err != nil {
		return nil, &ReadError{Step: StepStream, Err: err}
	}

	f := a.file
	info := &Info{
		FileSize:        r.Size(),
		Architecture:    getArchitecture(f.COFFHeader.Machine),
		ImageKind:       "无可选头",
		Timestamp:       time.Unix(int64(f.COFFHeader.TimeDateStamp), 0).UTC(),
		Characteristics: f.COFFHeader.Characteristics,
		Offsets:         f.Offsets,
	}

	if opt := f.OptionalHeader; opt != nil {
		info.ImageKind = getImageKind(opt.Magic)
		info.LinkerVersion = fmt.Sprintf("%d.%d", opt.MajorLinkerVersion, opt.MinorLinkerVersion)
		info.EntryPoint = opt.AddressOfEntryPoint
		info.BaseOfCode = opt.BaseOfCode
		info.SizeOfCode = opt.SizeOfCode
	}

	if err := a.extractSections(info); err != nil {
		return nil, err
	}
	return info, nil
}

func (a *Analyzer) extractSections(info *Info) error {
	for _, s := range a.file.Sections {
		si := SectionInfo{
			Name:            s.Name.String(),
			VirtualAddress:  s.VirtualAddress,
			VirtualSize:     s.VirtualSize,
			Offset:          s.PointerToRawData,
			Size:            s.SizeOfRawData,
			Characteristics: s.Characteristics,
			Permissions:     getSectionPermissions(s.Characteristics),
			Truncated:       int64(s.PointerToRawData)+int64(s.SizeOfRawData) > info.FileSize,
		}

		if a.entropy && !si.Truncated {
			entropy, err := CalculateSectionEntropy(a.input, s)
			if err != nil {
				return err
			}
			si.Entropy = entropy
		}

		info.Sections = append(info.Sections, si)
	}
	return nil
}

func getArchitecture(machine uint16) string {
	switch machine {
	case pe.IMAGE_FILE_MACHINE_I386:
		return "x86 (32位)"
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return "x64 (64位)"
	case pe.IMAGE_FILE_MACHINE_ARM:
		return "ARM"
	case pe.IMAGE_FILE_MACHINE_ARMNT:
		return "ARM Thumb-2"
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return "ARM64"
	case pe.IMAGE_FILE_MACHINE_UNKNOWN:
		return "任意"
	default:
		return fmt.Sprintf("未知 (0x%X)", machine)
	}
}

func getImageKind(magic uint16) string {
	switch magic {
	case MagicPE32:
		return "PE32"
	case MagicPE32Plus:
		return "PE32+"
	case MagicROM:
		return "ROM"
	default:
		return fmt.Sprintf("未知 (0x%X)", magic)
	}
}

func getSectionPermissions(c uint32) string {
	perms := [3]byte{'-', '-', '-'}

	if c&pe.IMAGE_SCN_MEM_READ != 0 {
		perms[0] = 'R'
	}
	if c&pe.IMAGE_SCN_MEM_WRITE != 0 {
		perms[1] = 'W'
	}
	if c&pe.IMAGE_SCN_MEM_EXECUTE != 0 {
		perms[2] = 'X'
	}

	return string(perms[:])
}
