package pe

import (
	"encoding/binary"
	"io"

	"github.com/sirupsen/logrus"
)

// Parser reads PE headers from a seekable stream.
type Parser struct {
	log logrus.FieldLogger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger makes the parser log each step at debug level.
func WithLogger(log logrus.FieldLogger) ParserOption {
	return func(p *Parser) {
		p.log = log
	}
}

// NewParser creates a parser. Without options it logs nowhere.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}
	return p
}

// Parse reads the headers of the PE image in rs with a default parser.
func Parse(rs io.ReadSeeker) (*File, error) {
	return NewParser().Parse(rs)
}

// Parse reads the signature pointer, signature, COFF header, optional header
// and section table. It returns either a complete File or an error; a
// *SignatureError if the image is not PE and a *ReadError for any failed
// seek or read.
func (p *Parser) Parse(rs io.ReadSeeker) (*File, error) {
	r, err := NewReader(rs)
	if err != nil {
		return nil, &ReadError{Step: StepStream, Err: err}
	}
	p.log.WithField("size", r.Size()).Debug("开始解析PE头")

	var coffOffset uint32
	if err := p.readAt(r, StepSignaturePointer, SignaturePointerOffset, &coffOffset); err != nil {
		return nil, err
	}

	var magic uint32
	if err := p.readAt(r, StepMagic, int64(coffOffset), &magic); err != nil {
		return nil, err
	}
	// Nothing after the signature is meaningful for a non-PE file.
	if magic != Signature {
		return nil, &SignatureError{Expected: Signature, Got: magic}
	}

	var coff COFFHeader
	if err := p.read(r, StepCOFFHeader, &coff); err != nil {
		return nil, err
	}

	f := &File{
		Offsets:    computeOffsets(coffOffset, coff.SizeOfOptionalHeader),
		Magic:      magic,
		COFFHeader: coff,
	}

	if err := p.seek(r, StepOptionalHeader, f.Offsets.OptionalHeader); err != nil {
		return nil, err
	}
	if coff.SizeOfOptionalHeader >= OptionalHeaderStandardSize {
		var opt OptionalHeader
		if err := p.read(r, StepOptionalHeader, &opt); err != nil {
			return nil, err
		}
		f.OptionalHeader = &opt
	}

	sections := make([]SectionHeader, coff.NumberOfSections)
	if len(sections) > 0 {
		if err := p.readAt(r, StepSectionTable, f.Offsets.SectionTable, sections); err != nil {
			return nil, err
		}
	}
	f.Sections = sections

	p.log.WithFields(logrus.Fields{
		"machine":  coff.Machine,
		"sections": len(sections),
	}).Debug("PE头解析完成")

	return f, nil
}

func (p *Parser) seek(r *Reader, step Step, offset int64) error {
	p.log.WithFields(logrus.Fields{
		"step":   step,
		"offset": offset,
	}).Debug("定位")

	if err := r.Seek(offset); err != nil {
		return &ReadError{Step: step, Err: err}
	}
	return nil
}

func (p *Parser) read(r *Reader, step Step, v any) error {
	p.log.WithFields(logrus.Fields{
		"step":   step,
		"offset": r.Pos(),
		"size":   binary.Size(v),
	}).Debug("读取")

	if err := r.ReadStruct(v); err != nil {
		return &ReadError{Step: step, Err: err}
	}
	return nil
}

func (p *Parser) readAt(r *Reader, step Step, offset int64, v any) error {
	if err := p.seek(r, step, offset); err != nil {
		return err
	}
	return p.read(r, step, v)
}
