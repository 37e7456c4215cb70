// Package snapshot stores state vectors in a stable binary format.
//
// Layout, all integers little-endian:
//
//	[0:4]   magic "QSV1"
//	[4]     codec
//	[5]     qubit count
//	[6:8]   reserved, zero
//	[8:16]  raw length in bytes (16 << qubits)
//	[16:24] payload length in bytes
//	[24:]   payload
//
// The raw form is the amplitudes as interleaved (re, im) float64 values.
// The payload is the raw form, optionally compressed with zstd or an lz4
// block. When compression does not shrink the data the snapshot is written
// with CodecNone instead.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/cwbudde/algo-qsim/aligned"
	"github.com/cwbudde/algo-qsim/statevec"
)

// Codec selects the payload compression.
type Codec uint8

const (
	// CodecNone stores the raw amplitudes.
	CodecNone Codec = 0
	// CodecZSTD compresses with zstd.
	CodecZSTD Codec = 1
	// CodecLZ4 compresses with one lz4 block.
	CodecLZ4 Codec = 2
)

// String returns the codec name used on the command line.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZSTD:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec maps a codec name to its Codec.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return CodecNone, nil
	case "zstd":
		return CodecZSTD, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

const (
	magic      = "QSV1"
	headerSize = 24
)

var (
	// ErrBadMagic is returned when the input does not start with "QSV1".
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrUnknownCodec is returned for a codec byte or name outside the
	// known codecs.
	ErrUnknownCodec = errors.New("snapshot: unknown codec")

	// ErrCorrupt is returned when header fields disagree with each other or
	// the payload does not decode to the declared raw length.
	ErrCorrupt = errors.New("snapshot: corrupt data")
)

// lz4MaxRatio bounds the expansion of one lz4 block.
const lz4MaxRatio = 256

// Header is the decoded fixed-size snapshot prefix.
type Header struct {
	Codec      Codec
	Qubits     int
	RawLen     uint64
	PayloadLen uint64
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("snapshot: zstd encoder: %w", err)
	}
	return enc, nil
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: zstd decoder: %w", err)
	}
	return dec, nil
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Write encodes amps with codec and writes the snapshot to w. It returns the
// codec actually used.
func Write(w io.Writer, amps []complex128, codec Codec) (Codec, error) {
	n := len(amps)
	if n < 2 || n&(n-1) != 0 {
		return 0, fmt.Errorf("snapshot: %w", statevec.ErrNotPowerOfTwo)
	}
	qubits := bits.TrailingZeros(uint(n))

	raw := encodeRaw(amps)
	payload, used, err := compress(raw, codec)
	if err != nil {
		return 0, err
	}

	var hdr [headerSize]byte
	copy(hdr[0:4], magic)
	hdr[4] = byte(used)
	hdr[5] = byte(qubits)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(raw)))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return 0, fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return 0, fmt.Errorf("snapshot: write payload: %w", err)
	}
	return used, nil
}

// ReadHeader reads and checks the fixed-size prefix.
func ReadHeader(r io.Reader) (Header, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Header{}, fmt.Errorf("snapshot: read header: %w", err)
	}
	if string(hdr[0:4]) != magic {
		return Header{}, ErrBadMagic
	}

	h := Header{
		Codec:      Codec(hdr[4]),
		Qubits:     int(hdr[5]),
		RawLen:     binary.LittleEndian.Uint64(hdr[8:]),
		PayloadLen: binary.LittleEndian.Uint64(hdr[16:]),
	}
	if h.Codec > CodecLZ4 {
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownCodec, hdr[4])
	}
	if h.Qubits < 1 || h.Qubits > statevec.MaxQubits {
		return Header{}, fmt.Errorf("%w: %d qubits", ErrCorrupt, h.Qubits)
	}
	if h.RawLen != 16<<h.Qubits {
		return Header{}, fmt.Errorf("%w: raw length %d for %d qubits", ErrCorrupt, h.RawLen, h.Qubits)
	}
	if h.PayloadLen > maxPayload(h.Codec, h.RawLen) {
		return Header{}, fmt.Errorf("%w: payload length %d", ErrCorrupt, h.PayloadLen)
	}
	if h.Codec == CodecNone && h.PayloadLen != h.RawLen {
		return Header{}, fmt.Errorf("%w: payload length %d, want %d", ErrCorrupt, h.PayloadLen, h.RawLen)
	}
	if h.Codec == CodecLZ4 && h.RawLen > lz4MaxRatio*(h.PayloadLen+1) {
		return Header{}, fmt.Errorf("%w: raw length %d from %d lz4 bytes", ErrCorrupt, h.RawLen, h.PayloadLen)
	}
	return h, nil
}

// Read decodes a snapshot into a new state allocated from alloc.
func Read(r io.Reader, alloc aligned.Allocator) (*statevec.State, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	// The header is untrusted: buffers grow with the bytes actually read,
	// and the state is allocated once the payload has decoded.
	payload, err := io.ReadAll(io.LimitReader(r, int64(h.PayloadLen)))
	if err != nil {
		return nil, fmt.Errorf("snapshot: read payload: %w", err)
	}
	if uint64(len(payload)) != h.PayloadLen {
		return nil, fmt.Errorf("snapshot: read payload: %w", io.ErrUnexpectedEOF)
	}

	raw, err := decompress(payload, h)
	if err != nil {
		return nil, err
	}

	s, err := statevec.New(alloc, h.Qubits)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	decodeRaw(s.Amplitudes(), raw)
	return s, nil
}

func maxPayload(c Codec, raw uint64) uint64 {
	switch c {
	case CodecLZ4:
		return uint64(lz4.CompressBlockBound(int(raw)))
	case CodecZSTD:
		return raw + raw/128 + 1024
	default:
		return raw
	}
}

func encodeRaw(amps []complex128) []byte {
	raw := make([]byte, 16*len(amps))
	for i, a := range amps {
		binary.LittleEndian.PutUint64(raw[16*i:], math.Float64bits(real(a)))
		binary.LittleEndian.PutUint64(raw[16*i+8:], math.Float64bits(imag(a)))
	}
	return raw
}

func decodeRaw(dst []complex128, raw []byte) {
	for i := range dst {
		re := math.Float64frombits(binary.LittleEndian.Uint64(raw[16*i:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(raw[16*i+8:]))
		dst[i] = complex(re, im)
	}
}

// compress returns the payload and the codec it is encoded with.
func compress(raw []byte, codec Codec) ([]byte, Codec, error) {
	switch codec {
	case CodecNone:
		return raw, CodecNone, nil

	case CodecLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("snapshot: lz4: %w", err)
		}
		if n == 0 || n >= len(raw) {
			return raw, CodecNone, nil
		}
		return buf[:n], CodecLZ4, nil

	case CodecZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, 0, err
		}
		defer putZstdEncoder(enc)
		out := enc.EncodeAll(raw, nil)
		if len(out) >= len(raw) {
			return raw, CodecNone, nil
		}
		return out, CodecZSTD, nil

	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(codec))
	}
}

func decompress(payload []byte, h Header) ([]byte, error) {
	switch h.Codec {
	case CodecNone:
		if uint64(len(payload)) != h.RawLen {
			return nil, fmt.Errorf("%w: payload length %d, want %d", ErrCorrupt, len(payload), h.RawLen)
		}
		return payload, nil

	case CodecLZ4:
		raw := make([]byte, h.RawLen)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if uint64(n) != h.RawLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return raw, nil

	case CodecZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer putZstdDecoder(dec)
		if err := dec.Reset(bytes.NewReader(payload)); err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		raw, err := io.ReadAll(io.LimitReader(dec, int64(h.RawLen)+1))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if uint64(len(raw)) != h.RawLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(h.Codec))
	}
}
