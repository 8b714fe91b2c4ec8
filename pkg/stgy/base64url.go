package stgy

import (
	"encoding/base64"
	"fmt"
)

// EncodeBase64URL encodes data with the URL-safe alphabet and no padding.
func EncodeBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64URL reverses EncodeBase64URL. Padding is implied by the input
// length, so "" decodes to an empty slice.
func DecodeBase64URL(s string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return data, nil
}
