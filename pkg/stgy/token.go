package stgy

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Token delimiters. A token is TokenPrefix, one key indicator symbol, the
// ciphered base64url frame, and TokenSuffix.
const (
	TokenPrefix = "[stgy:a"
	TokenSuffix = "]"
)

// EncodeStgy wraps a board record into a token: compress and frame it,
// base64url encode the frame and cipher the result with the key taken from
// the frame checksum. The same record always yields the same token.
func EncodeStgy(record []byte) (string, error) {
	frame, err := Compress(record)
	if err != nil {
		return "", err
	}

	key := KeyFromChecksum(binary.LittleEndian.Uint32(frame[0:4]))
	payload, err := EncryptCipher(EncodeBase64URL(frame), key)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(TokenPrefix) + 1 + len(payload) + len(TokenSuffix))
	sb.WriteString(TokenPrefix)
	sb.WriteByte(IndicatorForKey(key))
	sb.WriteString(payload)
	sb.WriteString(TokenSuffix)
	return sb.String(), nil
}

// DecodeStgy validates a token and returns the board record it carries.
func DecodeStgy(token string) ([]byte, error) {
	frame, _, err := unwrapToken(token)
	if err != nil {
		return nil, err
	}
	return Decompress(frame)
}

// unwrapToken performs the text level checks of a decode and returns the
// raw frame together with the cipher key.
func unwrapToken(token string) ([]byte, int, error) {
	if !strings.HasPrefix(token, TokenPrefix) {
		return nil, 0, ErrMissingPrefix
	}
	if !strings.HasSuffix(token, TokenSuffix) {
		return nil, 0, ErrMissingSuffix
	}

	payload := token[len(TokenPrefix) : len(token)-len(TokenSuffix)]
	if len(payload) < 2 {
		return nil, 0, fmt.Errorf("%w: %d characters", ErrPayloadTooShort, len(payload))
	}

	key, err := KeyFromIndicator(payload[0])
	if err != nil {
		return nil, 0, err
	}

	b64, err := DecryptCipher(payload[1:], key)
	if err != nil {
		return nil, 0, err
	}

	frame, err := DecodeBase64URL(b64)
	if err != nil {
		return nil, 0, err
	}
	if len(frame) < frameHeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrBinaryTooShort, len(frame))
	}
	return frame, key, nil
}
