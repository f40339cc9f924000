package pe

import (
	"io"

	"github.com/pkg/errors"
)

// FindSection returns the index of the first section whose name field
// matches name. Names that fill all 8 bytes match without a terminator.
func FindSection(f *File, name string) (int, bool) {
	for i := range f.Sections {
		if f.Sections[i].Name.Equal(name) {
			return i, true
		}
	}
	return -1, false
}

// Section returns the header of the first section named name.
func (f *File) Section(name string) (*SectionHeader, error) {
	i, ok := FindSection(f, name)
	if !ok {
		return nil, errors.Wrapf(ErrSectionNotFound, "'%s'", name)
	}
	return &f.Sections[i], nil
}

// Extractor copies a section's raw data from a PE image to a writer.
type Extractor struct {
	// MaxSize caps SizeOfRawData. Zero means no limit.
	MaxSize uint64
}

// ExtractSection copies the raw data of h from r to w with no size limit.
func ExtractSection(r io.ReadSeeker, w io.Writer, h SectionHeader) error {
	return Extractor{}.Extract(r, w, h)
}

// ExtractByName finds the section named name in f and copies its raw data.
func ExtractByName(r io.ReadSeeker, w io.Writer, f *File, name string) error {
	h, err := f.Section(name)
	if err != nil {
		return err
	}
	return ExtractSection(r, w, *h)
}

// Extract seeks to PointerToRawData, reads exactly SizeOfRawData bytes and
// writes them to w in a single call. A zero-length section writes nothing.
func (e Extractor) Extract(r io.ReadSeeker, w io.Writer, h SectionHeader) error {
	name := h.Name.String()
	size := uint64(h.SizeOfRawData)
	if size == 0 {
		return nil
	}
	if e.MaxSize > 0 && size > e.MaxSize {
		return &SectionError{
			Section: name,
			Kind:    ErrAllocation,
			Err:     errors.Errorf("%d 字节超过上限 %d 字节", size, e.MaxSize),
		}
	}

	data, err := readSectionData(r, h)
	if err != nil {
		return &SectionError{Section: name, Kind: ErrReadSection, Err: err}
	}

	n, err := w.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &SectionError{Section: name, Kind: ErrWrite, Err: err}
	}
	return nil
}

// SectionData returns the raw bytes of h.
func SectionData(r io.ReadSeeker, h SectionHeader) ([]byte, error) {
	data, err := readSectionData(r, h)
	if err != nil {
		return nil, &SectionError{Section: h.Name.String(), Kind: ErrReadSection, Err: err}
	}
	return data, nil
}

func readSectionData(rs io.ReadSeeker, h SectionHeader) ([]byte, error) {
	r, err := NewReader(rs)
	if err != nil {
		return nil, err
	}
	if err := r.Seek(int64(h.PointerToRawData)); err != nil {
		return nil, err
	}
	return r.ReadExact(uint64(h.SizeOfRawData))
}
