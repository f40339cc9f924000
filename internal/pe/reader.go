// Package pe provides PE file header parsing and section extraction.
package pe

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Reader wraps an io.ReadSeeker with bounds-checked absolute seeks and
// exact-length reads.
type Reader struct {
	rs   io.ReadSeeker
	size int64
	pos  int64
}

// NewReader measures the stream and rewinds it to offset 0.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "获取文件大小失败")
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "重置文件位置失败")
	}

	return &Reader{
		rs:   rs,
		size: size,
	}, nil
}

// Size returns the stream size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// Pos returns the current absolute offset.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Seek moves to an absolute offset. Offsets beyond the end of the stream
// fail with ErrOutOfBounds instead of succeeding lazily.
func (r *Reader) Seek(offset int64) error {
	if offset < 0 || offset > r.size {
		return errors.Wrapf(ErrOutOfBounds, "偏移 0x%X (文件大小 0x%X)", offset, r.size)
	}
	if _, err := r.rs.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "定位到 0x%X 失败", offset)
	}
	r.pos = offset
	return nil
}

// ReadExact reads exactly n bytes from the current offset. A request larger
// than what remains fails with io.ErrUnexpectedEOF before any buffer is
// allocated.
func (r *Reader) ReadExact(n uint64) ([]byte, error) {
	remaining := r.size - r.pos
	if remaining < 0 {
		remaining = 0
	}
	if n > uint64(remaining) {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "需要 %d 字节, 偏移 0x%X 处仅剩 %d 字节", n, r.pos, remaining)
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(r.rs, buf)
	r.pos += int64(read)
	if err != nil {
		return nil, errors.Wrapf(err, "在偏移 0x%X 处读取 %d 字节失败", r.pos-int64(read), n)
	}
	return buf, nil
}

// ReadStruct reads binary.Size(v) bytes and decodes them little-endian into
// v, which must be a pointer to a fixed-size value or a slice of them.
func (r *Reader) ReadStruct(v any) error {
	size := binary.Size(v)
	if size < 0 {
		return errors.Errorf("不支持的数据类型: %T", v)
	}

	buf, err := r.ReadExact(uint64(size))
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, v)
}
