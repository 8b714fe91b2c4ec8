package stgy

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newObject(id uint16, x, y float64) BoardObject {
	return BoardObject{
		ObjectID: id,
		Flags:    ObjectFlags{Visible: true},
		Position: Position{X: x, Y: y},
		Size:     DefaultObjectSize,
		Color:    Color{R: 255, G: 100, B: 0, Opacity: 0},
	}
}

func newTextObject(text string, x, y float64) BoardObject {
	obj := newObject(TextObjectID, x, y)
	obj.Text = String(text)
	return obj
}

func withParams(obj BoardObject, p1, p2, p3 uint16) BoardObject {
	obj.Param1 = Uint16(p1)
	obj.Param2 = Uint16(p2)
	obj.Param3 = Uint16(p3)
	return obj
}

func TestBoardRecord_RoundTrip(t *testing.T) {
	cone := newObject(12, 256, 192)
	cone.Rotation = -45
	cone.Param1 = Uint16(90)
	cone.Param2 = Uint16(0)
	cone.Param3 = Uint16(65535)

	donut := newObject(17, 12.3, 0.1)
	donut.Flags = ObjectFlags{Visible: true, FlipHorizontal: true, FlipVertical: true, Locked: true}
	donut.Rotation = 180
	donut.Size = MaxObjectSize
	donut.Param1 = Uint16(360)
	donut.Param2 = Uint16(50)
	donut.Param3 = Uint16(1)

	hidden := newObject(47, 6553.5, 6553.5)
	hidden.Flags = ObjectFlags{}
	hidden.Rotation = -180
	hidden.Size = MinObjectSize
	hidden.Color = Color{R: 1, G: 2, B: 3, Opacity: 100}

	testCases := []struct {
		name  string
		board BoardData
	}{
		{
			name: "empty board",
			board: BoardData{
				Version: DefaultVersion, Width: 512, Height: 384,
				BackgroundID: 1, Objects: []BoardObject{},
			},
		},
		{
			name: "single object",
			board: BoardData{
				Version: DefaultVersion, Width: 512, Height: 384, Name: "Test",
				BackgroundID: 1, Objects: []BoardObject{newObject(47, 100, 100)},
			},
		},
		{
			name: "odd count keeps padding byte",
			board: BoardData{
				Version: DefaultVersion, Width: 512, Height: 384, Name: "odd",
				BackgroundID: 4,
				Objects: []BoardObject{
					cone,
					withParams(hidden, 0, 0, 0),
					withParams(newObject(3, 1, 2), 0, 0, 0),
				},
				SizePaddingByte: 0x7F,
			},
		},
		{
			name: "even count",
			board: BoardData{
				Version: DefaultVersion, Width: 512, Height: 384, Name: "even",
				BackgroundID: 7, Objects: []BoardObject{hidden, newObject(3, 1, 2)},
			},
		},
		{
			name: "params on every object",
			board: BoardData{
				Version: DefaultVersion, Width: 512, Height: 384, Name: "params",
				BackgroundID: 2, Objects: []BoardObject{cone, donut},
			},
		},
		{
			name: "text objects",
			board: BoardData{
				Version: DefaultVersion, Width: 512, Height: 384, Name: "Raid plan",
				BackgroundID: 5,
				Objects: []BoardObject{
					newTextObject("Hi", 10, 10),
					newObject(47, 100, 100),
					newTextObject("", 20, 20),
					newTextObject("Stack here then spread", 30, 30),
					newTextObject("ここに集合", 40, 40),
				},
				SizePaddingByte: 0x01,
			},
		},
		{
			name: "name lengths around the padding boundary",
			board: BoardData{
				Version: DefaultVersion, Width: 1, Height: 1, Name: "abc",
				BackgroundID: 1, Objects: []BoardObject{newTextObject("abcd", 0, 0), newTextObject("abcde", 0, 0)},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := SerializeBoardData(&tc.board)
			require.NoError(t, err)

			parsed, err := ParseBoardData(record)
			require.NoError(t, err)
			assert.Equal(t, &tc.board, parsed)

			again, err := SerializeBoardData(parsed)
			require.NoError(t, err)
			assert.Equal(t, record, again, "re-serialization must be byte identical")
		})
	}
}

func TestSerializeBoardData_Layout(t *testing.T) {
	board := &BoardData{
		Version: 2, Width: 512, Height: 384, Name: "Test",
		BackgroundID: 1, Objects: []BoardObject{},
	}

	record, err := SerializeBoardData(board)
	require.NoError(t, err)

	want := []byte{
		// header
		0x02, 0x00, 0x00, 0x00,
		0x00, 0x02, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
		0x80, 0x01,
		0x00, 0x00, 0x00, 0x00,
		// name
		0x01, 0x00, 0x08, 0x00, 'T', 'e', 's', 't', 0x00, 0x00, 0x00, 0x00,
		// empty arrays
		0x04, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x00, 0x03, 0x00, 0x00, 0x00,
		0x06, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x07, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x02, 0x00, 0x00, 0x00,
		// terminator
		0x03, 0x00, 0x01, 0x00, 0x01, 0x00,
	}
	assert.Equal(t, want, record)
}

func TestSerializeBoardData_SingleObjectLayout(t *testing.T) {
	obj := newObject(47, 100, 50.5)
	obj.Rotation = -90
	board := &BoardData{
		Version: 2, Width: 512, Height: 384,
		BackgroundID: 3, Objects: []BoardObject{obj},
		SizePaddingByte: 0xAB,
	}

	record, err := SerializeBoardData(board)
	require.NoError(t, err)

	want := []byte{
		0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, // empty name
		0x02, 0x00, 0x2F, 0x00, // object id 47
		0x04, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x00, // visible
		0x05, 0x00, 0x03, 0x00, 0x01, 0x00, 0xE8, 0x03, 0xF9, 0x01, // 1000, 505
		0x06, 0x00, 0x01, 0x00, 0x01, 0x00, 0xA6, 0xFF, // -90
		0x07, 0x00, 0x00, 0x00, 0x01, 0x00, 0x64, 0xAB, // size 100 + padding
		0x08, 0x00, 0x02, 0x00, 0x01, 0x00, 0xFF, 0x64, 0x00, 0x00,
		0x03, 0x00, 0x01, 0x00, 0x03, 0x00,
	}
	assert.Equal(t, want, record[recordHeaderSize:])
}

func TestSerializeBoardData_FieldOrder(t *testing.T) {
	a := newTextObject("label text", 1, 1)
	b := newObject(5, 2, 2)
	b.Param2 = Uint16(7)
	board := &BoardData{Version: 2, Objects: []BoardObject{a, b}, BackgroundID: 1}

	record, err := SerializeBoardData(board)
	require.NoError(t, err)

	var order []uint16
	r := &recordReader{buf: record, off: recordHeaderSize}
	for r.remaining() >= 4 {
		id, err := r.u16()
		require.NoError(t, err)
		order = append(order, id)

		switch id {
		case fieldName:
			_, err = r.paddedString()
		case fieldObjectID:
			var oid uint16
			oid, err = r.u16()
			if err == nil && oid == TextObjectID {
				_, err = r.u16()
				require.NoError(t, err)
				order = append(order, fieldText)
				_, err = r.paddedString()
			}
		case fieldText:
			_, err = r.bytes(4)
		default:
			var count uint16
			_, err = r.u16()
			require.NoError(t, err)
			count, err = r.u16()
			require.NoError(t, err)
			width := map[uint16]int{fieldFlags: 2, fieldPositions: 4, fieldRotations: 2, fieldSizes: 1, fieldColors: 4, fieldParam2: 2}[id]
			_, err = r.bytes(width * int(count))
		}
		require.NoError(t, err)
	}

	assert.Equal(t, []uint16{1, 2, 3, 2, 4, 5, 6, 7, 8, 11, 3}, order)
}

func TestSerializeBoardData_DoesNotMutateInput(t *testing.T) {
	board := &BoardData{
		Version: 2, Width: 10, Height: 10, Name: "same",
		Objects: []BoardObject{newTextObject("x", 1, 1), newObject(1, 2, 3)},
	}
	before := *board
	before.Objects = append([]BoardObject(nil), board.Objects...)

	_, err := SerializeBoardData(board)
	require.NoError(t, err)
	assert.Equal(t, before, *board)
}

func TestSerializeBoardData_Invalid(t *testing.T) {
	textOnIcon := newObject(47, 1, 1)
	textOnIcon.Text = String("nope")

	testCases := []struct {
		name  string
		board *BoardData
	}{
		{name: "nil board", board: nil},
		{name: "NUL in name", board: &BoardData{Name: "a\x00b"}},
		{name: "oversized name", board: &BoardData{Name: strings.Repeat("n", 65532)}},
		{name: "text on non-text object", board: &BoardData{Objects: []BoardObject{textOnIcon}}},
		{name: "NUL in text", board: &BoardData{Objects: []BoardObject{newTextObject("a\x00", 0, 0)}}},
		{name: "negative position", board: &BoardData{Objects: []BoardObject{newObject(1, -1, 0)}}},
		{name: "position overflow", board: &BoardData{Objects: []BoardObject{newObject(1, 0, 6553.6)}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SerializeBoardData(tc.board)
			assert.ErrorIs(t, err, ErrValueOutOfRange)
		})
	}
}

func TestBoardRecord_MissingTextAndParamsNormalize(t *testing.T) {
	text := newObject(TextObjectID, 1, 1) // no Text set
	withParam := newObject(2, 1, 1)
	withParam.Param1 = Uint16(30)
	without := newObject(3, 1, 1)

	board := &BoardData{Version: 2, BackgroundID: 1, Objects: []BoardObject{text, withParam, without}}
	record, err := SerializeBoardData(board)
	require.NoError(t, err)

	parsed, err := ParseBoardData(record)
	require.NoError(t, err)
	require.Len(t, parsed.Objects, 3)

	require.NotNil(t, parsed.Objects[0].Text)
	assert.Equal(t, "", *parsed.Objects[0].Text)
	assert.Equal(t, Uint16(0), parsed.Objects[0].Param1)
	assert.Equal(t, Uint16(30), parsed.Objects[1].Param1)
	assert.Equal(t, Uint16(0), parsed.Objects[2].Param1)
	assert.Nil(t, parsed.Objects[2].Param2)
}

func TestBoardRecord_EvenCountDropsPaddingByte(t *testing.T) {
	board := &BoardData{
		Version: 2, BackgroundID: 1,
		Objects:         []BoardObject{newObject(1, 1, 1), newObject(2, 2, 2)},
		SizePaddingByte: 0x7F,
	}
	record, err := SerializeBoardData(board)
	require.NoError(t, err)

	plain := *board
	plain.SizePaddingByte = 0
	want, err := SerializeBoardData(&plain)
	require.NoError(t, err)
	assert.Equal(t, want, record)

	parsed, err := ParseBoardData(record)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), parsed.SizePaddingByte)
	assert.Equal(t, uint8(0x7F), board.SizePaddingByte)
}

// insertBeforeTerminator splices extra bytes in front of the trailing
// terminator record.
func insertBeforeTerminator(record, extra []byte) []byte {
	cut := len(record) - 6
	out := append([]byte(nil), record[:cut]...)
	out = append(out, extra...)
	return append(out, record[cut:]...)
}

func TestParseBoardData_SkipsUnknownFields(t *testing.T) {
	board := &BoardData{
		Version: 2, Width: 512, Height: 384, Name: "future",
		BackgroundID: 6, Objects: []BoardObject{newObject(9, 5, 5)},
	}
	record, err := SerializeBoardData(board)
	require.NoError(t, err)

	unknown := []byte{
		0x63, 0x00, 0x01, 0x00, 0x01, 0x00, 0xAA, 0xBB, // field 99, one u16
		0x64, 0x00, 0x00, 0x00, 0x03, 0x00, 0x01, 0x02, 0x03, 0x00, // field 100, three u8 + pad
	}
	extended := insertBeforeTerminator(record, unknown)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	parsed, err := parseRecord(extended, logger)
	require.NoError(t, err)
	assert.Equal(t, board, parsed)
	assert.Contains(t, logs.String(), "field_id=99")
	assert.Contains(t, logs.String(), "field_id=100")
	assert.Contains(t, logs.String(), ErrUnknownFieldID.Error())
}

func TestParseBoardData_ShortStandaloneTextIsTerminator(t *testing.T) {
	board := &BoardData{Version: 2, BackgroundID: 1, Objects: []BoardObject{}}
	record, err := SerializeBoardData(board)
	require.NoError(t, err)

	// Replace the terminator with one whose length is 4 and background is 5.
	binary.LittleEndian.PutUint16(record[len(record)-4:], 4)
	binary.LittleEndian.PutUint16(record[len(record)-2:], 5)

	parsed, err := ParseBoardData(record)
	require.NoError(t, err)
	assert.Equal(t, uint16(5), parsed.BackgroundID)
}

func TestParseBoardData_Malformed(t *testing.T) {
	board := &BoardData{
		Version: 2, Width: 512, Height: 384, Name: "x",
		BackgroundID: 1, Objects: []BoardObject{newObject(1, 1, 1), newTextObject("t", 2, 2)},
	}
	record, err := SerializeBoardData(board)
	require.NoError(t, err)

	flagsAt := bytes.Index(record, []byte{0x04, 0x00, 0x01, 0x00, 0x02, 0x00})
	require.Greater(t, flagsAt, 0)

	testCases := []struct {
		name   string
		record func() []byte
	}{
		{
			name:   "shorter than header",
			record: func() []byte { return record[:recordHeaderSize-1] },
		},
		{
			name:   "missing terminator",
			record: func() []byte { return record[:len(record)-6] },
		},
		{
			name: "array count mismatch",
			record: func() []byte {
				r := append([]byte(nil), record...)
				binary.LittleEndian.PutUint16(r[flagsAt+4:], 1)
				return r
			},
		},
		{
			name: "array type mismatch",
			record: func() []byte {
				r := append([]byte(nil), record...)
				binary.LittleEndian.PutUint16(r[flagsAt+2:], arrayTypeRGBA)
				return r
			},
		},
		{
			name: "duplicate array",
			record: func() []byte {
				return insertBeforeTerminator(record, []byte{0x06, 0x00, 0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00})
			},
		},
		{
			name: "text object without text",
			record: func() []byte {
				return insertBeforeTerminator(record, []byte{0x02, 0x00, 0x64, 0x00, 0x04, 0x00})
			},
		},
		{
			name: "truncated array",
			record: func() []byte {
				return insertBeforeTerminator(record, []byte{0x0A, 0x00, 0x01, 0x00, 0xFF, 0x00})
			},
		},
		{
			name: "unknown field with unknown layout",
			record: func() []byte {
				return insertBeforeTerminator(record, []byte{0x63, 0x00, 0x09, 0x00, 0x00, 0x00})
			},
		},
		{
			name: "standalone text of eight bytes",
			record: func() []byte {
				text := []byte{0x03, 0x00, 0x08, 0x00}
				text = append(text, []byte("abcdefg\x00")...)
				return insertBeforeTerminator(record, text)
			},
		},
		{
			name: "field after terminator",
			record: func() []byte {
				return append(append([]byte(nil), record...), 0x63, 0x00, 0x01, 0x00, 0x00, 0x00)
			},
		},
		{
			name: "orphan standalone text",
			record: func() []byte {
				text := []byte{0x03, 0x00, 0x0C, 0x00}
				text = append(text, []byte("orphan text\x00")...)
				return insertBeforeTerminator(record, text)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBoardData(tc.record())
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestObjectFlags_Bits(t *testing.T) {
	for bits := uint16(0); bits < 16; bits++ {
		assert.Equal(t, bits, FlagsFromBits(bits).Bits())
	}
	assert.Equal(t, ObjectFlags{Visible: true}, FlagsFromBits(0xFFF1))
}

func TestPaddedLength(t *testing.T) {
	assert.Equal(t, 4, paddedLength(0))
	assert.Equal(t, 4, paddedLength(3))
	assert.Equal(t, 8, paddedLength(4))
	assert.Equal(t, 16, paddedLength(15))
}
