package stgy

import (
	"errors"
	"fmt"
)

// ErrMalformedToken is the parent of every error caused by the outer shape of
// a token: missing delimiters, a payload that is too short, or characters that
// do not form valid base64.
var ErrMalformedToken = errors.New("malformed stgy token")

var (
	ErrMissingPrefix   = fmt.Errorf("%w: missing %q prefix", ErrMalformedToken, TokenPrefix)
	ErrMissingSuffix   = fmt.Errorf("%w: missing %q suffix", ErrMalformedToken, TokenSuffix)
	ErrPayloadTooShort = fmt.Errorf("%w: payload too short", ErrMalformedToken)
	ErrBinaryTooShort  = fmt.Errorf("%w: binary frame too short", ErrMalformedToken)
	ErrInvalidBase64   = fmt.Errorf("%w: invalid base64 data", ErrMalformedToken)
)

var (
	ErrInvalidKeyCharacter        = errors.New("invalid key character")
	ErrInvalidCipherCharacter     = errors.New("invalid cipher character")
	ErrChecksumMismatch           = errors.New("crc32 mismatch")
	ErrDecompressedLengthMismatch = errors.New("decompressed length mismatch")
	ErrInflate                    = errors.New("inflate failed")

	// ErrUnknownFieldID is reported to the logger when the parser skips a
	// field it does not understand. It is never returned.
	ErrUnknownFieldID = errors.New("unknown field id")

	ErrMalformedRecord = errors.New("malformed board record")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrRecordTooLarge  = errors.New("board record too large")
)
