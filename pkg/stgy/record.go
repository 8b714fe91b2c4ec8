package stgy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

const recordHeaderSize = 24

// Field IDs of the tagged record.
const (
	fieldName      uint16 = 1
	fieldObjectID  uint16 = 2
	fieldText      uint16 = 3
	fieldFlags     uint16 = 4
	fieldPositions uint16 = 5
	fieldRotations uint16 = 6
	fieldSizes     uint16 = 7
	fieldColors    uint16 = 8
	fieldParam1    uint16 = 10
	fieldParam2    uint16 = 11
	fieldParam3    uint16 = 12
)

// Array element types. The type decides the element width.
const (
	arrayTypeU8   uint16 = 0
	arrayTypeU16  uint16 = 1
	arrayTypeRGBA uint16 = 2
	arrayTypeXY   uint16 = 3
)

const (
	// terminatorLength is the length value written in the terminator record.
	terminatorLength uint16 = 1
	// maxTerminatorLength is the largest length the reader treats as a
	// terminator. Inline texts are read by position and are not affected; a
	// standalone text of 8 bytes or fewer would be misread as a terminator,
	// and the fields after it then fail the record.
	maxTerminatorLength uint16 = 8

	positionScale = 10
)

var paramFields = [3]uint16{fieldParam1, fieldParam2, fieldParam3}

// SerializeBoardData encodes a board into its tagged-field record. The board
// is not modified.
//
// Fields are written in the order 1, 2 (with inline 3 for text objects), 4,
// 5, 6, 7, 8, 10, 11, 12 and finally the terminator 3 carrying the
// background ID.
func SerializeBoardData(b *BoardData) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil board", ErrValueOutOfRange)
	}
	if err := validateBoard(b); err != nil {
		return nil, err
	}

	n := uint16(len(b.Objects))
	w := &recordWriter{buf: make([]byte, 0, recordHeaderSize+len(b.Name)+32*len(b.Objects)+64)}

	w.u32(b.Version)
	w.u32(b.Width)
	w.u32(0)
	w.u32(0)
	w.u16(0)
	w.u16(b.Height)
	w.u32(0)

	w.u16(fieldName)
	w.paddedString(b.Name)

	for i := range b.Objects {
		obj := &b.Objects[i]
		w.u16(fieldObjectID)
		w.u16(obj.ObjectID)
		if obj.IsText() {
			w.u16(fieldText)
			if obj.Text != nil {
				w.paddedString(*obj.Text)
			} else {
				w.paddedString("")
			}
		}
	}

	w.arrayHeader(fieldFlags, arrayTypeU16, n)
	for i := range b.Objects {
		w.u16(b.Objects[i].Flags.Bits())
	}

	w.arrayHeader(fieldPositions, arrayTypeXY, n)
	for i := range b.Objects {
		w.u16(scalePosition(b.Objects[i].Position.X))
		w.u16(scalePosition(b.Objects[i].Position.Y))
	}

	w.arrayHeader(fieldRotations, arrayTypeU16, n)
	for i := range b.Objects {
		w.u16(uint16(b.Objects[i].Rotation))
	}

	w.arrayHeader(fieldSizes, arrayTypeU8, n)
	for i := range b.Objects {
		w.u8(b.Objects[i].Size)
	}
	if n%2 == 1 {
		w.u8(b.SizePaddingByte)
	}

	w.arrayHeader(fieldColors, arrayTypeRGBA, n)
	for i := range b.Objects {
		c := b.Objects[i].Color
		w.u8(c.R)
		w.u8(c.G)
		w.u8(c.B)
		w.u8(c.Opacity)
	}

	for p, id := range paramFields {
		if !anyParam(b.Objects, p) {
			continue
		}
		w.arrayHeader(id, arrayTypeU16, n)
		for i := range b.Objects {
			if v := objectParam(&b.Objects[i], p); v != nil {
				w.u16(*v)
			} else {
				w.u16(0)
			}
		}
	}

	w.u16(fieldText)
	w.u16(terminatorLength)
	w.u16(b.BackgroundID)

	return w.buf, nil
}

// ParseBoardData decodes a tagged-field record. Unknown fields are skipped
// and reported to slog.Default.
func ParseBoardData(data []byte) (*BoardData, error) {
	return parseRecord(data, slog.Default())
}

func validateBoard(b *BoardData) error {
	if len(b.Objects) > math.MaxUint16 {
		return fmt.Errorf("%w: %d objects", ErrValueOutOfRange, len(b.Objects))
	}
	if err := validateString("name", b.Name); err != nil {
		return err
	}
	for i := range b.Objects {
		obj := &b.Objects[i]
		if obj.Text != nil {
			if !obj.IsText() {
				return fmt.Errorf("%w: object %d (id %d) is not a text object but has text", ErrValueOutOfRange, i, obj.ObjectID)
			}
			if err := validateString(fmt.Sprintf("object %d text", i), *obj.Text); err != nil {
				return err
			}
		}
		if !validPosition(obj.Position.X) || !validPosition(obj.Position.Y) {
			return fmt.Errorf("%w: object %d position (%g, %g)", ErrValueOutOfRange, i, obj.Position.X, obj.Position.Y)
		}
	}
	return nil
}

func validateString(what, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: %s contains NUL", ErrValueOutOfRange, what)
	}
	if paddedLength(len(s)) > math.MaxUint16 {
		return fmt.Errorf("%w: %s is %d bytes", ErrValueOutOfRange, what, len(s))
	}
	return nil
}

func validPosition(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && math.Round(v*positionScale) <= math.MaxUint16
}

func scalePosition(v float64) uint16 {
	return uint16(math.Round(v * positionScale))
}

// paddedLength is the smallest multiple of four strictly greater than n, so
// every string keeps at least one NUL terminator.
func paddedLength(n int) int {
	return (n/4 + 1) * 4
}

func anyParam(objects []BoardObject, p int) bool {
	for i := range objects {
		if objectParam(&objects[i], p) != nil {
			return true
		}
	}
	return false
}

func objectParam(obj *BoardObject, p int) *uint16 {
	switch p {
	case 0:
		return obj.Param1
	case 1:
		return obj.Param2
	default:
		return obj.Param3
	}
}

type recordWriter struct {
	buf []byte
}

func (w *recordWriter) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *recordWriter) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *recordWriter) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *recordWriter) arrayHeader(id, typ, count uint16) {
	w.u16(id)
	w.u16(typ)
	w.u16(count)
}

// paddedString writes len:u16 (the padded length) followed by the string
// bytes and NUL padding up to a four byte boundary.
func (w *recordWriter) paddedString(s string) {
	padded := paddedLength(len(s))
	w.u16(uint16(padded))
	w.buf = append(w.buf, s...)
	for i := len(s); i < padded; i++ {
		w.buf = append(w.buf, 0)
	}
}

type recordReader struct {
	buf []byte
	off int
}

func (r *recordReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *recordReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedRecord, n, r.off, r.remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *recordReader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *recordReader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *recordReader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// paddedString reads a len:u16 prefixed, NUL padded string.
func (r *recordReader) paddedString() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	raw, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return cString(raw), nil
}

func cString(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

// recordParser accumulates the parallel arrays of a record before they are
// zipped into objects.
type recordParser struct {
	r      recordReader
	logger *slog.Logger
	board  *BoardData

	objectIDs  []uint16
	texts      []string
	seen       map[uint16]bool
	terminated bool

	flags     []uint16
	positions []uint16
	rotations []uint16
	sizes     []uint8
	colors    []Color
	params    [3][]uint16
}

func parseRecord(data []byte, logger *slog.Logger) (*BoardData, error) {
	if len(data) < recordHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d byte header", ErrMalformedRecord, len(data), recordHeaderSize)
	}

	p := &recordParser{
		r:      recordReader{buf: data},
		logger: logger,
		board:  &BoardData{},
		seen:   make(map[uint16]bool),
	}
	if err := p.header(); err != nil {
		return nil, err
	}

	for p.r.remaining() >= 4 {
		if p.terminated {
			return nil, fmt.Errorf("%w: %d bytes after terminator", ErrMalformedRecord, p.r.remaining())
		}
		id, err := p.r.u16()
		if err != nil {
			return nil, err
		}
		if err := p.field(id); err != nil {
			return nil, err
		}
	}

	if !p.terminated {
		return nil, fmt.Errorf("%w: missing terminator", ErrMalformedRecord)
	}
	if err := p.assemble(); err != nil {
		return nil, err
	}
	return p.board, nil
}

func (p *recordParser) header() error {
	var err error
	if p.board.Version, err = p.r.u32(); err != nil {
		return err
	}
	if p.board.Width, err = p.r.u32(); err != nil {
		return err
	}
	if _, err = p.r.bytes(10); err != nil {
		return err
	}
	if p.board.Height, err = p.r.u16(); err != nil {
		return err
	}
	_, err = p.r.bytes(4)
	return err
}

func (p *recordParser) field(id uint16) error {
	switch id {
	case fieldName:
		name, err := p.r.paddedString()
		if err != nil {
			return err
		}
		p.board.Name = name
		return nil
	case fieldObjectID:
		return p.objectID()
	case fieldText:
		return p.standaloneText()
	case fieldFlags:
		return p.array(id, arrayTypeU16, func(count int) (err error) {
			p.flags, err = p.u16s(count)
			return err
		})
	case fieldPositions:
		return p.array(id, arrayTypeXY, func(count int) (err error) {
			p.positions, err = p.u16s(2 * count)
			return err
		})
	case fieldRotations:
		return p.array(id, arrayTypeU16, func(count int) (err error) {
			p.rotations, err = p.u16s(count)
			return err
		})
	case fieldSizes:
		return p.array(id, arrayTypeU8, p.sizeArray)
	case fieldColors:
		return p.array(id, arrayTypeRGBA, p.colorArray)
	case fieldParam1, fieldParam2, fieldParam3:
		slot := int(id - fieldParam1)
		return p.array(id, arrayTypeU16, func(count int) (err error) {
			p.params[slot], err = p.u16s(count)
			return err
		})
	default:
		return p.skipUnknown(id)
	}
}

func (p *recordParser) objectID() error {
	oid, err := p.r.u16()
	if err != nil {
		return err
	}
	p.objectIDs = append(p.objectIDs, oid)
	if oid != TextObjectID {
		return nil
	}

	next, err := p.r.u16()
	if err != nil {
		return err
	}
	if next != fieldText {
		return fmt.Errorf("%w: text object %d followed by field %d instead of text", ErrMalformedRecord, len(p.objectIDs)-1, next)
	}
	text, err := p.r.paddedString()
	if err != nil {
		return err
	}
	p.texts = append(p.texts, text)
	return nil
}

// standaloneText handles a field 3 that does not follow a text object: a
// short length marks the terminator, anything longer is a text.
func (p *recordParser) standaloneText() error {
	n, err := p.r.u16()
	if err != nil {
		return err
	}
	if n <= maxTerminatorLength {
		bg, err := p.r.u16()
		if err != nil {
			return err
		}
		p.board.BackgroundID = bg
		p.terminated = true
		return nil
	}
	raw, err := p.r.bytes(int(n))
	if err != nil {
		return err
	}
	p.texts = append(p.texts, cString(raw))
	return nil
}

func (p *recordParser) array(id, wantType uint16, read func(count int) error) error {
	if p.seen[id] {
		return fmt.Errorf("%w: duplicate field %d", ErrMalformedRecord, id)
	}
	p.seen[id] = true

	typ, err := p.r.u16()
	if err != nil {
		return err
	}
	if typ != wantType {
		return fmt.Errorf("%w: field %d has array type %d, want %d", ErrMalformedRecord, id, typ, wantType)
	}
	count, err := p.r.u16()
	if err != nil {
		return err
	}
	return read(int(count))
}

func (p *recordParser) u16s(count int) ([]uint16, error) {
	raw, err := p.r.bytes(2 * count)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return out, nil
}

func (p *recordParser) sizeArray(count int) error {
	raw, err := p.r.bytes(count)
	if err != nil {
		return err
	}
	p.sizes = append([]uint8(nil), raw...)
	if count%2 == 1 {
		pad, err := p.r.u8()
		if err != nil {
			return err
		}
		p.board.SizePaddingByte = pad
	}
	return nil
}

func (p *recordParser) colorArray(count int) error {
	raw, err := p.r.bytes(4 * count)
	if err != nil {
		return err
	}
	p.colors = make([]Color, count)
	for i := range p.colors {
		c := raw[4*i:]
		p.colors[i] = Color{R: c[0], G: c[1], B: c[2], Opacity: c[3]}
	}
	return nil
}

// skipUnknown steps over a field this reader does not know, provided it has
// the array layout so that its length can be computed.
func (p *recordParser) skipUnknown(id uint16) error {
	typ, err := p.r.u16()
	if err != nil {
		return err
	}
	count, err := p.r.u16()
	if err != nil {
		return err
	}

	var size int
	switch typ {
	case arrayTypeU8:
		size = int(count) + int(count)%2
	case arrayTypeU16:
		size = 2 * int(count)
	case arrayTypeRGBA, arrayTypeXY:
		size = 4 * int(count)
	default:
		return fmt.Errorf("%w: cannot skip unknown field %d with array type %d", ErrMalformedRecord, id, typ)
	}
	if _, err := p.r.bytes(size); err != nil {
		return err
	}

	p.logger.Warn("skipping unknown board record field",
		"field_id", id,
		"array_type", typ,
		"count", count,
		"error", fmt.Errorf("%w: %d", ErrUnknownFieldID, id),
	)
	return nil
}

// assemble zips the parallel arrays into objects.
func (p *recordParser) assemble() error {
	n := len(p.objectIDs)

	checks := []struct {
		id  uint16
		got int
	}{
		{fieldFlags, len(p.flags)},
		{fieldPositions, len(p.positions) / 2},
		{fieldRotations, len(p.rotations)},
		{fieldSizes, len(p.sizes)},
		{fieldColors, len(p.colors)},
	}
	for _, c := range checks {
		if !p.seen[c.id] && n == 0 {
			continue
		}
		if !p.seen[c.id] {
			return fmt.Errorf("%w: missing field %d", ErrMalformedRecord, c.id)
		}
		if c.got != n {
			return fmt.Errorf("%w: field %d has %d entries for %d objects", ErrMalformedRecord, c.id, c.got, n)
		}
	}
	for slot, id := range paramFields {
		if p.seen[id] && len(p.params[slot]) != n {
			return fmt.Errorf("%w: field %d has %d entries for %d objects", ErrMalformedRecord, id, len(p.params[slot]), n)
		}
	}

	textObjects := 0
	for _, oid := range p.objectIDs {
		if oid == TextObjectID {
			textObjects++
		}
	}
	if len(p.texts) != textObjects {
		return fmt.Errorf("%w: %d texts for %d text objects", ErrMalformedRecord, len(p.texts), textObjects)
	}

	if n == 0 {
		p.board.Objects = []BoardObject{}
		return nil
	}

	objects := make([]BoardObject, n)
	next := 0
	for i, oid := range p.objectIDs {
		obj := BoardObject{
			ObjectID: oid,
			Flags:    FlagsFromBits(p.flags[i]),
			Position: Position{
				X: float64(p.positions[2*i]) / positionScale,
				Y: float64(p.positions[2*i+1]) / positionScale,
			},
			Rotation: int16(p.rotations[i]),
			Size:     p.sizes[i],
			Color:    p.colors[i],
		}
		if oid == TextObjectID {
			obj.Text = String(p.texts[next])
			next++
		}
		if p.seen[fieldParam1] {
			obj.Param1 = Uint16(p.params[0][i])
		}
		if p.seen[fieldParam2] {
			obj.Param2 = Uint16(p.params[1][i])
		}
		if p.seen[fieldParam3] {
			obj.Param3 = Uint16(p.params[2][i])
		}
		objects[i] = obj
	}
	p.board.Objects = objects
	return nil
}
