// Package modelreader decodes the fixed-width primitives of the legacy
// XGBoost binary model layout from a sequential byte stream.
//
// All multi-byte values are little-endian unless the method name says
// otherwise. Every read either consumes exactly the decoded width or fails
// with a TruncatedError carrying the stream offset.
package modelreader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

// maxPrealloc caps slice preallocation driven by counts read from the stream so
// a corrupt count fails with TruncatedError instead of exhausting memory.
const maxPrealloc = 1 << 16

// Reader is a cursor over a model byte stream.
type Reader struct {
	r      *bufio.Reader
	offset int64
	buf    [8]byte
}

// New wraps r. An existing *bufio.Reader is used as is.
func New(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.offset }

func (r *Reader) fill(op string, p []byte) error {
	n, err := io.ReadFull(r.r, p)
	start := r.offset
	r.offset += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.NewTruncatedError(op, start, int64(len(p)), int64(n))
		}
		return errors.Wrapf(err, "%s: read at offset %d", op, start)
	}
	return nil
}

// ReadBytes reads exactly n raw bytes.
func (r *Reader) ReadBytes(op string, n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.NewStructuralErrorf(op, "negative byte count %d", n)
	}
	if n <= maxPrealloc {
		p := make([]byte, n)
		if err := r.fill(op, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return r.readLarge(op, int64(n))
}

// readLarge grows the buffer as bytes arrive rather than trusting n up front.
func (r *Reader) readLarge(op string, n int64) ([]byte, error) {
	var b bytes.Buffer
	start := r.offset
	got, err := io.CopyN(&b, r.r, n)
	r.offset += got
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewTruncatedError(op, start, n, got)
		}
		return nil, errors.Wrapf(err, "%s: read at offset %d", op, start)
	}
	return b.Bytes(), nil
}

// Skip advances the cursor by n bytes without retaining them.
func (r *Reader) Skip(op string, n int64) error {
	if n < 0 {
		return errors.NewStructuralErrorf(op, "negative skip %d", n)
	}
	start := r.offset
	got, err := io.CopyN(io.Discard, r.r, n)
	r.offset += got
	if err != nil {
		if err == io.EOF {
			return errors.NewTruncatedError(op, start, n, got)
		}
		return errors.Wrapf(err, "%s: skip at offset %d", op, start)
	}
	return nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8(op string) (byte, error) {
	if err := r.fill(op, r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// Read4 reads four raw bytes. Header dialect detection inspects them before
// deciding how to interpret them.
func (r *Reader) Read4(op string) ([4]byte, error) {
	var out [4]byte
	if err := r.fill(op, out[:]); err != nil {
		return out, err
	}
	return out, nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32(op string) (int32, error) {
	v, err := r.ReadUint32(op)
	return int32(v), err
}

// ReadInt32BE reads a big-endian int32.
func (r *Reader) ReadInt32BE(op string) (int32, error) {
	if err := r.fill(op, r.buf[:4]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(r.buf[:4])), nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32(op string) (uint32, error) {
	if err := r.fill(op, r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:4]), nil
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64(op string) (int64, error) {
	if err := r.fill(op, r.buf[:8]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(r.buf[:8])), nil
}

// ReadFloat32 reads a little-endian IEEE-754 float32.
func (r *Reader) ReadFloat32(op string) (float32, error) {
	v, err := r.ReadUint32(op)
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a little-endian IEEE-754 float64.
func (r *Reader) ReadFloat64(op string) (float64, error) {
	if err := r.fill(op, r.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:8])), nil
}

// ReadInt32s reads n little-endian int32 values.
func (r *Reader) ReadInt32s(op string, n int) ([]int32, error) {
	if n < 0 {
		return nil, errors.NewStructuralErrorf(op, "negative element count %d", n)
	}
	out := make([]int32, 0, capHint(n))
	for i := 0; i < n; i++ {
		v, err := r.ReadInt32(op)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadFloat32s reads n little-endian float32 values.
func (r *Reader) ReadFloat32s(op string, n int) ([]float32, error) {
	if n < 0 {
		return nil, errors.NewStructuralErrorf(op, "negative element count %d", n)
	}
	out := make([]float32, 0, capHint(n))
	for i := 0; i < n; i++ {
		v, err := r.ReadFloat32(op)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadFloat64sBE reads n big-endian float64 values. Only the legacy
// prediction buffer is stored this way.
func (r *Reader) ReadFloat64sBE(op string, n int) ([]float64, error) {
	if n < 0 {
		return nil, errors.NewStructuralErrorf(op, "negative element count %d", n)
	}
	out := make([]float64, 0, capHint(n))
	for i := 0; i < n; i++ {
		if err := r.fill(op, r.buf[:8]); err != nil {
			return nil, err
		}
		out = append(out, math.Float64frombits(binary.BigEndian.Uint64(r.buf[:8])))
	}
	return out, nil
}

// ReadString reads an int64 length prefix followed by that many bytes of
// UTF-8 text.
func (r *Reader) ReadString(op string) (string, error) {
	n, err := r.ReadInt64(op)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", errors.NewStructuralErrorf(op, "negative string length %d", n)
	}
	if n > math.MaxInt32 {
		return "", errors.NewStructuralErrorf(op, "string length %d too large", n)
	}
	p, err := r.ReadBytes(op, int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", errors.NewInvalidUTF8Error(op, len(p))
	}
	return string(p), nil
}

func capHint(n int) int {
	if n > maxPrealloc {
		return maxPrealloc
	}
	return n
}
