// Package stgy implements the reversible codec that turns a strategy board
// into a short, URL-safe text token and back.
//
// # Token Format
//
// A token has the shape
//
//	[stgy:a<key><payload>]
//
// where <key> is a single symbol announcing the cipher key and <payload> is
// the ciphered, base64url encoded frame. Only the characters A-Z, a-z, 0-9,
// '-' and '_' appear between the delimiters.
//
// # Pipeline
//
// Encoding runs the following steps, and decoding runs them in reverse with
// a validation at every step:
//
//	BoardData -> record -> frame -> base64url -> cipher -> token
//
//   - Record: a 24 byte header followed by tagged fields. Per-object
//     attributes are stored as parallel arrays, one array per attribute.
//   - Frame: [CRC32(4)][DecompressedLength(2)][zlib data], little-endian.
//     The CRC32 covers everything after itself.
//   - Base64url: URL-safe alphabet, no padding.
//   - Cipher: a positional substitution over the 64 symbol alphabet. The key
//     is the low six bits of the frame CRC32, so encoding is deterministic.
//
// The cipher is obfuscation only. It offers no confidentiality.
//
// # Usage
//
//	codec := stgy.NewCodec()
//
//	token, err := codec.Encode(board)
//	if err != nil {
//	    return err
//	}
//
//	board, err = codec.Decode(token)
//	if err != nil {
//	    return err // not a valid code
//	}
//
// The layers are also exported individually: SerializeBoardData and
// ParseBoardData for the record, EncodeStgy and DecodeStgy for the token
// envelope, and Compress, Decompress, EncryptCipher and DecryptCipher below
// them.
//
// # Error Handling
//
// Every failure aborts the whole decode. Errors wrap one of the sentinel
// values in this package and can be matched with errors.Is:
//   - ErrMalformedToken and its children for delimiter, length and base64 problems
//   - ErrInvalidKeyCharacter and ErrInvalidCipherCharacter for unknown symbols
//   - ErrChecksumMismatch and ErrDecompressedLengthMismatch for frame integrity
//   - ErrMalformedRecord for a record that cannot be parsed
//
// Unknown record fields are not errors. They are skipped and logged.
//
// # Thread Safety
//
// All functions are safe for concurrent use. The lookup tables and the CRC32
// table are read only after package initialization.
package stgy
