package pe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	img := buildImage(t, testImage{
		sections: []testSection{
			{name: ".text", data: pattern(0x300, 1), characteristics: 0x60000020},
			{name: ".data", data: pattern(0x80, 2), characteristics: 0xC0000040},
			{name: ".bss"},
		},
	})

	f, err := Parse(bytes.NewReader(img))
	require.NoError(t, err)

	assert.Equal(t, Signature, f.Magic)
	assert.Equal(t, Offsets{
		SignaturePointer: 0x3C,
		COFFHeader:       0x80,
		OptionalHeader:   0x98,
		SectionTable:     0x178,
	}, f.Offsets)
	assert.Equal(t, f.Offsets, f.DeriveOffsets())

	assert.Equal(t, uint16(3), f.COFFHeader.NumberOfSections)
	assert.Equal(t, uint16(0xE0), f.COFFHeader.SizeOfOptionalHeader)

	require.NotNil(t, f.OptionalHeader)
	assert.Equal(t, OptionalHeader{
		Magic:               MagicPE32,
		MajorLinkerVersion:  14,
		MinorLinkerVersion:  29,
		SizeOfCode:          0x1000,
		AddressOfEntryPoint: 0x1234,
		BaseOfCode:          0x1000,
	}, *f.OptionalHeader)

	require.Len(t, f.Sections, 3)
	assert.Equal(t, ".text", f.Sections[0].Name.String())
	assert.Equal(t, uint32(0x200), f.Sections[0].PointerToRawData)
	assert.Equal(t, uint32(0x300), f.Sections[0].SizeOfRawData)
	assert.Equal(t, ".data", f.Sections[1].Name.String())
	assert.Equal(t, uint32(0x600), f.Sections[1].PointerToRawData)
	assert.Equal(t, ".bss", f.Sections[2].Name.String())
	assert.Zero(t, f.Sections[2].SizeOfRawData)
}

func TestParseOptionalHeaderSizes(t *testing.T) {
	tests := []struct {
		name         string
		size         uint16
		none         bool
		wantOptional bool
	}{
		{name: "No optional header", none: true},
		{name: "Smaller than standard fields", size: 16},
		{name: "Exactly standard fields", size: 24, wantOptional: true},
		{name: "Non-standard size", size: 28, wantOptional: true},
		{name: "PE32+ size", size: 0xF0, wantOptional: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := buildImage(t, testImage{
				optionalHeaderSize: tt.size,
				noOptionalHeader:   tt.none,
				sections:           []testSection{{name: ".text", data: pattern(0x40, 3)}},
			})

			f, err := Parse(bytes.NewReader(img))
			require.NoError(t, err)

			// The section table follows the on-disk optional header size,
			// not the size of the modeled prefix.
			want := int64(0x80+4+20) + int64(tt.size)
			assert.Equal(t, want, f.Offsets.SectionTable)
			assert.Equal(t, f.Offsets, f.DeriveOffsets())
			assert.Equal(t, tt.wantOptional, f.OptionalHeader != nil)
			require.Len(t, f.Sections, 1)
			assert.Equal(t, ".text", f.Sections[0].Name.String())
		})
	}
}

func TestParseInvalidSignature(t *testing.T) {
	tests := []struct {
		name  string
		magic uint32
	}{
		{name: "MZ", magic: 0x00005A4D},
		{name: "PE with trailing byte", magic: 0x01004550},
		{name: "NE", magic: 0x0000454E},
		{name: "All ones", magic: 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := buildImage(t, testImage{
				magic:    tt.magic,
				sections: []testSection{{name: ".text", data: pattern(0x10, 4)}},
			})

			f, err := Parse(bytes.NewReader(img))
			assert.Nil(t, f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSignature))
			assert.False(t, errors.Is(err, ErrRead))

			var sigErr *SignatureError
			require.True(t, errors.As(err, &sigErr))
			assert.Equal(t, Signature, sigErr.Expected)
			assert.Equal(t, tt.magic, sigErr.Got)
		})
	}

	t.Run("Zero magic", func(t *testing.T) {
		img := buildImage(t, testImage{})
		binary.LittleEndian.PutUint32(img[0x80:], 0)

		f, err := Parse(bytes.NewReader(img))
		assert.Nil(t, f)
		assert.True(t, errors.Is(err, ErrInvalidSignature))
	})
}

func TestParseReadErrors(t *testing.T) {
	valid := buildImage(t, testImage{
		sections: []testSection{
			{name: ".text", data: pattern(0x20, 5)},
			{name: ".data", data: pattern(0x20, 6)},
		},
	})

	pointerPastEOF := buildImage(t, testImage{})
	binary.LittleEndian.PutUint32(pointerPastEOF[SignaturePointerOffset:], uint32(len(pointerPastEOF)+0x100))

	pointerAtEOF := buildImage(t, testImage{})
	binary.LittleEndian.PutUint32(pointerAtEOF[SignaturePointerOffset:], uint32(len(pointerAtEOF)-2))

	manySections := buildImage(t, testImage{})
	binary.LittleEndian.PutUint16(manySections[0x80+4+2:], 0xFFFF)

	tests := []struct {
		name     string
		data     []byte
		wantStep Step
	}{
		{name: "Empty file", data: nil, wantStep: StepSignaturePointer},
		{name: "Shorter than DOS header", data: valid[:0x3E], wantStep: StepSignaturePointer},
		{name: "Signature pointer past EOF", data: pointerPastEOF, wantStep: StepMagic},
		{name: "Signature cut short", data: pointerAtEOF, wantStep: StepMagic},
		{name: "COFF header truncated", data: valid[:0x80+4+10], wantStep: StepCOFFHeader},
		{name: "Optional header truncated", data: valid[:0x80+4+20+10], wantStep: StepOptionalHeader},
		{name: "Section table truncated", data: valid[:0x178+SectionHeaderSize+8], wantStep: StepSectionTable},
		{name: "Section count exceeds file", data: manySections, wantStep: StepSectionTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(bytes.NewReader(tt.data))
			assert.Nil(t, f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRead))

			var readErr *ReadError
			require.True(t, errors.As(err, &readErr))
			assert.Equal(t, tt.wantStep, readErr.Step)
		})
	}
}

func TestParseZeroSections(t *testing.T) {
	img := buildImage(t, testImage{})

	f, err := Parse(bytes.NewReader(img))
	require.NoError(t, err)
	assert.NotNil(t, f.Sections)
	assert.Empty(t, f.Sections)
}

func TestParseZeroSectionsTableAtEOF(t *testing.T) {
	img := buildImage(t, testImage{optionalHeaderSize: 16})
	// Cut the file right after the COFF header; the table offset is past EOF.
	img = img[:0x98]

	f, err := Parse(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, int64(0xA8), f.Offsets.SectionTable)
	assert.Nil(t, f.OptionalHeader)
	assert.NotNil(t, f.Sections)
	assert.Empty(t, f.Sections)
}

func TestParserLogsSteps(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	img := buildImage(t, testImage{
		sections: []testSection{{name: ".text", data: pattern(0x10, 7)}},
	})

	_, err := NewParser(WithLogger(logger)).Parse(bytes.NewReader(img))
	require.NoError(t, err)

	steps := map[Step]bool{}
	for _, e := range hook.AllEntries() {
		if s, ok := e.Data["step"].(Step); ok {
			steps[s] = true
		}
	}
	assert.True(t, steps[StepSignaturePointer])
	assert.True(t, steps[StepMagic])
	assert.True(t, steps[StepCOFFHeader])
	assert.True(t, steps[StepOptionalHeader])
	assert.True(t, steps[StepSectionTable])
	assert.Equal(t, "PE头解析完成", hook.LastEntry().Message)
}
