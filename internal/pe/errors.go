package pe

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error classes. Concrete errors returned by this package match exactly one
// of these under errors.Is.
var (
	ErrInvalidSignature = errors.New("无效的PE签名")
	ErrRead             = errors.New("读取PE头失败")
	ErrSectionNotFound  = errors.New("未找到节区")
	ErrAllocation       = errors.New("节区数据过大，无法分配缓冲区")
	ErrReadSection      = errors.New("读取节区数据失败")
	ErrWrite            = errors.New("写入节区数据失败")

	// ErrOutOfBounds is the cause of a seek that lands outside the input.
	ErrOutOfBounds = errors.New("偏移超出文件范围")
)

// Step names the header region being read when parsing failed.
type Step string

// Parse steps, in the order they run.
const (
	StepStream           Step = "文件大小"
	StepSignaturePointer Step = "签名指针"
	StepMagic            Step = "PE签名"
	StepCOFFHeader       Step = "COFF头"
	StepOptionalHeader   Step = "可选头"
	StepSectionTable     Step = "节区表"
)

// SignatureError reports a magic value other than "PE\0\0".
type SignatureError struct {
	Expected uint32
	Got      uint32
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%v: 期望 0x%08X, 实际 0x%08X", ErrInvalidSignature, e.Expected, e.Got)
}

// Is reports whether target is ErrInvalidSignature.
func (e *SignatureError) Is(target error) bool {
	return target == ErrInvalidSignature
}

// ReadError is an I/O failure while parsing headers, tagged with the step.
type ReadError struct {
	Step Step
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%v (%s): %v", ErrRead, e.Step, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRead.
func (e *ReadError) Is(target error) bool {
	return target == ErrRead
}

// SectionError is a failure while extracting a section's raw data. Kind is
// one of ErrAllocation, ErrReadSection or ErrWrite.
type SectionError struct {
	Section string
	Kind    error
	Err     error
}

func (e *SectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Section)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Section, e.Err)
}

// Unwrap returns the underlying I/O error, if any.
func (e *SectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error class of e.
func (e *SectionError) Is(target error) bool {
	return target == e.Kind
}
