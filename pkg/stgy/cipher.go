package stgy

import "fmt"

const alphabetSize = 64

// EncryptCipher applies the positional substitution cipher to a base64url
// string. The character at index i with base64 value v becomes the cipher
// symbol for (v + i + key) mod 64, so equal inputs at different positions
// produce different symbols.
func EncryptCipher(s string, key int) (string, error) {
	if key < 0 || key >= alphabetSize {
		return "", fmt.Errorf("%w: cipher key %d", ErrValueOutOfRange, key)
	}

	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		v := base64Values[s[i]]
		if v < 0 {
			return "", fmt.Errorf("%w: %q at index %d", ErrInvalidBase64, s[i], i)
		}
		std := base64URLAlphabet[(int(v)+i+key)%alphabetSize]
		out[i] = cipherSymbols[std]
	}
	return string(out), nil
}

// DecryptCipher is the inverse of EncryptCipher.
func DecryptCipher(s string, key int) (string, error) {
	if key < 0 || key >= alphabetSize {
		return "", fmt.Errorf("%w: cipher key %d", ErrValueOutOfRange, key)
	}

	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		std, ok := alphabetTable[s[i]]
		if !ok {
			return "", fmt.Errorf("%w: %q at index %d", ErrInvalidCipherCharacter, s[i], i)
		}
		v := int(base64Values[std])
		out[i] = base64URLAlphabet[mod(v-i-key, alphabetSize)]
	}
	return string(out), nil
}

// mod returns a non-negative remainder.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
