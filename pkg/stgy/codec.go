package stgy

import (
	"encoding/binary"
	"log/slog"
)

// Codec converts between BoardData and tokens. A Codec holds no mutable
// state and is safe for concurrent use.
type Codec struct {
	logger *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger that receives unknown field warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// NewCodec creates a codec. Without WithLogger, warnings go to slog.Default.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Encode serializes a board and wraps it into a token.
func (c *Codec) Encode(b *BoardData) (string, error) {
	record, err := SerializeBoardData(b)
	if err != nil {
		return "", err
	}
	return EncodeStgy(record)
}

// Decode unwraps a token and parses the board it carries.
func (c *Codec) Decode(token string) (*BoardData, error) {
	record, err := DecodeStgy(token)
	if err != nil {
		return nil, err
	}
	return parseRecord(record, c.logger)
}

// TokenInfo describes the envelope of a valid token.
type TokenInfo struct {
	Key                int    `json:"key" yaml:"key"`
	KeyIndicator       string `json:"key_indicator" yaml:"key_indicator"`
	Checksum           uint32 `json:"checksum" yaml:"checksum"`
	DecompressedLength int    `json:"decompressed_length" yaml:"decompressed_length"`
	CompressedLength   int    `json:"compressed_length" yaml:"compressed_length"`
	TokenLength        int    `json:"token_length" yaml:"token_length"`
}

// Inspect fully validates a token, including its record, and reports its
// envelope.
func (c *Codec) Inspect(token string) (*TokenInfo, error) {
	frame, key, err := unwrapToken(token)
	if err != nil {
		return nil, err
	}
	record, err := Decompress(frame)
	if err != nil {
		return nil, err
	}
	if _, err := parseRecord(record, c.logger); err != nil {
		return nil, err
	}

	return &TokenInfo{
		Key:                key,
		KeyIndicator:       string(token[len(TokenPrefix)]),
		Checksum:           binary.LittleEndian.Uint32(frame[0:4]),
		DecompressedLength: len(record),
		CompressedLength:   len(frame) - frameHeaderSize,
		TokenLength:        len(token),
	}, nil
}
