package stgy

import (
	"encoding/binary"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenPattern = regexp.MustCompile(`^\[stgy:a[A-Za-z0-9_-]+\]$`)

func exampleBoard() *BoardData {
	return &BoardData{
		Version:      2,
		Width:        512,
		Height:       384,
		Name:         "Test",
		BackgroundID: 1,
		Objects: []BoardObject{
			{
				ObjectID: 47,
				Position: Position{X: 100, Y: 100},
				Rotation: 0,
				Size:     100,
				Color:    Color{R: 255, G: 100, B: 0, Opacity: 0},
				Flags:    ObjectFlags{Visible: true},
			},
		},
	}
}

// wrapFrame builds a token around an arbitrary frame, keyed by the CRC32
// stored in the frame.
func wrapFrame(t *testing.T, frame []byte) string {
	t.Helper()
	key := KeyFromChecksum(binary.LittleEndian.Uint32(frame[0:4]))
	payload, err := EncryptCipher(EncodeBase64URL(frame), key)
	require.NoError(t, err)
	return TokenPrefix + string(IndicatorForKey(key)) + payload + TokenSuffix
}

func TestCodec_ExampleBoard(t *testing.T) {
	codec := NewCodec()

	token, err := codec.Encode(exampleBoard())
	require.NoError(t, err)
	assert.Regexp(t, tokenPattern, token)

	board, err := codec.Decode(token)
	require.NoError(t, err)
	require.Len(t, board.Objects, 1)
	assert.Equal(t, uint16(47), board.Objects[0].ObjectID)
	assert.Equal(t, 100.0, board.Objects[0].Position.X)
	assert.Equal(t, exampleBoard(), board)
}

func TestCodec_Deterministic(t *testing.T) {
	codec := NewCodec()

	first, err := codec.Encode(exampleBoard())
	require.NoError(t, err)
	second, err := codec.Encode(exampleBoard())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other := exampleBoard()
	other.Name = "Different"
	third, err := codec.Encode(other)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestCodec_DecodeEncodeIsStable(t *testing.T) {
	codec := NewCodec()
	board := exampleBoard()
	board.Objects = append(board.Objects,
		BoardObject{ObjectID: TextObjectID, Text: String("go here"), Size: 120, Position: Position{X: 3.5, Y: 7}},
		BoardObject{ObjectID: 12, Rotation: -30, Size: 75, Param1: Uint16(90), Param2: Uint16(4), Param3: Uint16(2)},
	)
	board.Objects[1].Param1 = Uint16(0)
	board.Objects[1].Param2 = Uint16(0)
	board.Objects[1].Param3 = Uint16(0)
	board.Objects[0].Param1 = Uint16(0)
	board.Objects[0].Param2 = Uint16(0)
	board.Objects[0].Param3 = Uint16(0)
	board.SizePaddingByte = 0xEE

	token, err := codec.Encode(board)
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, board, decoded)

	again, err := codec.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, token, again)
}

func TestEncodeStgy_RecordRoundTrip(t *testing.T) {
	record, err := SerializeBoardData(exampleBoard())
	require.NoError(t, err)

	token, err := EncodeStgy(record)
	require.NoError(t, err)

	decoded, err := DecodeStgy(token)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestEncodeStgy_KeyMatchesChecksum(t *testing.T) {
	codec := NewCodec()
	token, err := codec.Encode(exampleBoard())
	require.NoError(t, err)

	info, err := codec.Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, KeyFromChecksum(info.Checksum), info.Key)
	assert.Equal(t, string(IndicatorForKey(info.Key)), info.KeyIndicator)
	assert.Equal(t, len(token), info.TokenLength)
	assert.Greater(t, info.CompressedLength, 0)

	record, err := SerializeBoardData(exampleBoard())
	require.NoError(t, err)
	assert.Equal(t, len(record), info.DecompressedLength)
}

func TestDecodeStgy_ValidationOrder(t *testing.T) {
	testCases := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty", token: "", want: ErrMissingPrefix},
		{name: "wrong prefix", token: "[stgy:b" + "pAAAAAAAA]", want: ErrMissingPrefix},
		{name: "missing suffix", token: "[stgy:apAAAAAAAA", want: ErrMissingSuffix},
		{name: "no payload", token: "[stgy:a]", want: ErrPayloadTooShort},
		{name: "key only", token: "[stgy:ap]", want: ErrPayloadTooShort},
		{name: "bad key character", token: "[stgy:a!AAAAAAAA]", want: ErrInvalidKeyCharacter},
		{name: "bad cipher character", token: "[stgy:apAAAA.AAA]", want: ErrInvalidCipherCharacter},
		{name: "impossible base64 length", token: "[stgy:apAAAAA]", want: ErrInvalidBase64},
		{name: "frame too short", token: "[stgy:apAAA]", want: ErrBinaryTooShort},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeStgy(tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodeStgy_MalformedTokenFamily(t *testing.T) {
	for _, token := range []string{"", "[stgy:a", "[stgy:a]", "[stgy:apAAA]", "[stgy:apAAAAA]"} {
		_, err := DecodeStgy(token)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", token)
	}
}

func TestDecodeStgy_CorruptedFrame(t *testing.T) {
	record, err := SerializeBoardData(exampleBoard())
	require.NoError(t, err)
	frame, err := Compress(record)
	require.NoError(t, err)

	t.Run("checksum bit flips", func(t *testing.T) {
		for i := range frame {
			for bit := 0; bit < 8; bit++ {
				corrupted := append([]byte(nil), frame...)
				corrupted[i] ^= 1 << bit

				_, err := DecodeStgy(wrapFrame(t, corrupted))
				require.ErrorIs(t, err, ErrChecksumMismatch, "byte %d bit %d", i, bit)
			}
		}
	})

	t.Run("stored length", func(t *testing.T) {
		forged := append([]byte(nil), frame...)
		binary.LittleEndian.PutUint16(forged[4:], uint16(len(record)+3))
		binary.LittleEndian.PutUint32(forged[0:], Checksum(forged[4:]))

		_, err := DecodeStgy(wrapFrame(t, forged))
		assert.ErrorIs(t, err, ErrDecompressedLengthMismatch)
	})

	t.Run("wrong key indicator", func(t *testing.T) {
		token := wrapFrame(t, frame)
		key, err := KeyFromIndicator(token[len(TokenPrefix)])
		require.NoError(t, err)

		wrong := []byte(token)
		wrong[len(TokenPrefix)] = IndicatorForKey(key + 1)
		_, err = DecodeStgy(string(wrong))
		assert.Error(t, err)
	})
}

func TestCodec_DecodeRejectsInvalidRecord(t *testing.T) {
	token, err := EncodeStgy([]byte("not a board record at all"))
	require.NoError(t, err)

	_, err = NewCodec().Decode(token)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = NewCodec().Inspect(token)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestCodec_EncodeRejectsInvalidBoard(t *testing.T) {
	_, err := NewCodec().Encode(nil)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestCodec_ConcurrentUse(t *testing.T) {
	codec := NewCodec()
	want, err := codec.Encode(exampleBoard())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := codec.Encode(exampleBoard())
			if err != nil {
				errs <- err
				return
			}
			if token != want {
				errs <- assert.AnError
				return
			}
			if _, err := codec.Decode(token); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
