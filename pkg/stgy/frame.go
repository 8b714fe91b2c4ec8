package stgy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// Frame layout, little-endian:
//
//	[0..3] CRC32 of bytes [4..end]
//	[4..5] decompressed record length
//	[6..]  zlib-compressed record
const (
	frameHeaderSize = 6
	maxRecordSize   = math.MaxUint16
)

// Compress deflates a board record and wraps it in a checksummed frame.
func Compress(record []byte) ([]byte, error) {
	if len(record) > maxRecordSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrRecordTooLarge, len(record), maxRecordSize)
	}

	var buf bytes.Buffer
	buf.Grow(frameHeaderSize + len(record))
	buf.Write(make([]byte, frameHeaderSize))

	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate writer: %w", err)
	}
	if _, err := zw.Write(record); err != nil {
		return nil, fmt.Errorf("failed to deflate record: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush deflate writer: %w", err)
	}

	frame := buf.Bytes()
	binary.LittleEndian.PutUint16(frame[4:], uint16(len(record)))
	binary.LittleEndian.PutUint32(frame[0:], Checksum(frame[4:]))
	return frame, nil
}

// Decompress verifies a frame's checksum, inflates its payload and checks the
// result against the stored length. Any mismatch is fatal.
func Decompress(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBinaryTooShort, len(frame))
	}

	stored := binary.LittleEndian.Uint32(frame[0:4])
	if actual := Checksum(frame[4:]); actual != stored {
		return nil, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksumMismatch, stored, actual)
	}

	want := int(binary.LittleEndian.Uint16(frame[4:6]))

	zr, err := zlib.NewReader(bytes.NewReader(frame[frameHeaderSize:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInflate, err)
	}
	defer zr.Close()

	// One byte past the stored length is enough to detect an overrun.
	record, err := io.ReadAll(io.LimitReader(zr, int64(want)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInflate, err)
	}
	if len(record) != want {
		return nil, fmt.Errorf("%w: stored %d, inflated %d", ErrDecompressedLengthMismatch, want, len(record))
	}
	return record, nil
}
