package pe

import (
	"bytes"
	"fmt"
)

const (
	// SignaturePointerOffset is where the DOS stub stores the file offset of
	// the PE signature (e_lfanew).
	SignaturePointerOffset = 0x3C

	// Signature is "PE\0\0" read as a little-endian uint32.
	Signature uint32 = 0x00004550

	SignatureSize              = 4
	COFFHeaderSize             = 20
	OptionalHeaderStandardSize = 24
	SectionHeaderSize          = 40
	SectionNameSize            = 8
)

// COFFHeader is the 20-byte file header that follows the signature.
type COFFHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// OptionalHeader holds the standard fields at the start of the optional
// header. Windows-specific fields and data directories are not modeled.
type OptionalHeader struct {
	Magic                   uint16
	MajorLinkerVersion      uint8
	MinorLinkerVersion      uint8
	SizeOfCode              uint32
	SizeOfInitializedData   uint32
	SizeOfUninitializedData uint32
	AddressOfEntryPoint     uint32
	BaseOfCode              uint32
}

// SectionName is the fixed-width, NUL-padded name field of a section header.
// A name that uses all 8 bytes has no terminator.
type SectionName [SectionNameSize]byte

// NewSectionName builds a name field, rejecting names longer than 8 bytes.
func NewSectionName(name string) (SectionName, error) {
	var n SectionName
	if len(name) > SectionNameSize {
		return n, fmt.Errorf("节区名称过长: %d 字节 (最大%d字节)", len(name), SectionNameSize)
	}
	copy(n[:], name)
	return n, nil
}

// Len returns the position of the first NUL, or 8 if there is none.
func (n SectionName) Len() int {
	if i := bytes.IndexByte(n[:], 0); i >= 0 {
		return i
	}
	return SectionNameSize
}

func (n SectionName) String() string {
	return string(n[:n.Len()])
}

// Equal compares the effective bytes of the field with name.
func (n SectionName) Equal(name string) bool {
	return string(n[:n.Len()]) == name
}

// SectionHeader is one 40-byte entry of the section table.
type SectionHeader struct {
	Name                 SectionName
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLinenumbers uint32
	NumberOfRelocations  uint16
	NumberOfLinenumbers  uint16
	Characteristics      uint32
}

// Offsets are the absolute file offsets of each header region.
type Offsets struct {
	SignaturePointer int64
	COFFHeader       int64
	OptionalHeader   int64
	SectionTable     int64
}

// computeOffsets derives the header layout from the signature pointer value
// and SizeOfOptionalHeader. The COFF offset points at the signature; the
// COFF header itself starts 4 bytes later.
func computeOffsets(coffOffset uint32, optionalHeaderSize uint16) Offsets {
	optional := int64(coffOffset) + SignatureSize + COFFHeaderSize
	return Offsets{
		SignaturePointer: SignaturePointerOffset,
		COFFHeader:       int64(coffOffset),
		OptionalHeader:   optional,
		SectionTable:     optional + int64(optionalHeaderSize),
	}
}

// File is a parsed PE image: derived offsets, signature and headers.
type File struct {
	Offsets        Offsets
	Magic          uint32
	COFFHeader     COFFHeader
	OptionalHeader *OptionalHeader // nil if SizeOfOptionalHeader < 24
	Sections       []SectionHeader
}

// DeriveOffsets recomputes the header layout from the parsed fields.
func (f *File) DeriveOffsets() Offsets {
	return computeOffsets(uint32(f.Offsets.COFFHeader), f.COFFHeader.SizeOfOptionalHeader)
}
