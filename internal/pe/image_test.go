package pe

import (
	"debug/pe"
	"encoding/binary"
	"testing"
)

type testSection struct {
	name            string
	data            []byte
	size            uint32 // overrides len(data) in the header when non-zero
	ptr             uint32 // placed automatically when zero
	characteristics uint32
}

type testImage struct {
	coffOffset         uint32
	magic              uint32
	machine            uint16
	optionalHeaderSize uint16
	noOptionalHeader   bool
	sections           []testSection
}

// buildImage lays out a minimal PE image: DOS stub with e_lfanew, signature,
// COFF header, optional header and section table, then raw section data on
// 0x200 boundaries unless a section pins its own offset.
func buildImage(t *testing.T, img testImage) []byte {
	t.Helper()

	if img.coffOffset == 0 {
		img.coffOffset = 0x80
	}
	if img.magic == 0 {
		img.magic = Signature
	}
	if img.machine == 0 {
		img.machine = pe.IMAGE_FILE_MACHINE_I386
	}
	if img.optionalHeaderSize == 0 && !img.noOptionalHeader {
		img.optionalHeaderSize = 0xE0
	}

	buf := make([]byte, 0x40)
	buf[0], buf[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(buf[SignaturePointerOffset:], img.coffOffset)

	off := int(img.coffOffset)
	buf = put(buf, off, le32(img.magic))

	coff := make([]byte, COFFHeaderSize)
	binary.LittleEndian.PutUint16(coff[0:2], img.machine)
	binary.LittleEndian.PutUint16(coff[2:4], uint16(len(img.sections)))
	binary.LittleEndian.PutUint32(coff[4:8], 0x5F5E1000)
	binary.LittleEndian.PutUint16(coff[16:18], img.optionalHeaderSize)
	binary.LittleEndian.PutUint16(coff[18:20], pe.IMAGE_FILE_EXECUTABLE_IMAGE)
	buf = put(buf, off+SignatureSize, coff)

	optOff := off + SignatureSize + COFFHeaderSize
	opt := make([]byte, img.optionalHeaderSize)
	if len(opt) >= OptionalHeaderStandardSize {
		binary.LittleEndian.PutUint16(opt[0:2], MagicPE32)
		opt[2], opt[3] = 14, 29
		binary.LittleEndian.PutUint32(opt[4:8], 0x1000)
		binary.LittleEndian.PutUint32(opt[16:20], 0x1234)
		binary.LittleEndian.PutUint32(opt[20:24], 0x1000)
	}
	buf = put(buf, optOff, opt)

	tableOff := optOff + int(img.optionalHeaderSize)
	next := alignTo(tableOff+len(img.sections)*SectionHeaderSize, 0x200)
	for i, s := range img.sections {
		ptr := s.ptr
		if ptr == 0 && len(s.data) > 0 {
			ptr = uint32(next)
			next = alignTo(next+len(s.data), 0x200)
		}
		size := s.size
		if size == 0 {
			size = uint32(len(s.data))
		}

		hdr := make([]byte, SectionHeaderSize)
		copy(hdr[0:8], s.name)
		binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(s.data)))
		binary.LittleEndian.PutUint32(hdr[12:16], uint32(0x1000*(i+1)))
		binary.LittleEndian.PutUint32(hdr[16:20], size)
		binary.LittleEndian.PutUint32(hdr[20:24], ptr)
		binary.LittleEndian.PutUint32(hdr[36:40], s.characteristics)
		buf = put(buf, tableOff+i*SectionHeaderSize, hdr)

		if len(s.data) > 0 {
			buf = put(buf, int(ptr), s.data)
		}
	}

	return buf
}

func put(buf []byte, off int, data []byte) []byte {
	if end := off + len(data); end > len(buf) {
		buf = append(buf, make([]byte, end-len(buf))...)
	}
	copy(buf[off:], data)
	return buf
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func alignTo(v, a int) int {
	return (v + a - 1) / a * a
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}
