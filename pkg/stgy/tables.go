package stgy

import "fmt"

// base64URLAlphabet orders the 64 symbols by their base64 value.
const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// keyTable maps a key indicator symbol to the base64 character whose value is
// the cipher key. Part of the wire format.
var keyTable = map[byte]byte{
	'A': 'Z', 'B': '3', 'C': 'K', 'D': '2', 'E': 'U', 'F': '1', 'G': 'g', 'H': 'B',
	'I': 'V', 'J': '5', 'K': 'E', 'L': 'L', 'M': 'I', 'N': '8', 'O': 'f', 'P': 'D',
	'Q': '9', 'R': 'o', 'S': 'C', 'T': 'y', 'U': 'j', 'V': 'w', 'W': 'a', 'X': 'H',
	'Y': 'Y', 'Z': 'J', 'a': 'p', 'b': 'm', 'c': 'M', 'd': 'N', 'e': 'F', 'f': 'z',
	'g': 'u', 'h': 'n', 'i': 'O', 'j': 'v', 'k': 'h', 'l': 'b', 'm': 'x', 'n': 'd',
	'o': 'Q', 'p': 'A', 'q': 'l', 'r': 'R', 's': 'T', 't': '4', 'u': 'c', 'v': 'e',
	'w': 'W', 'x': 'i', 'y': '0', 'z': 'P', '0': '-', '1': 'k', '2': 'r', '3': 't',
	'4': '7', '5': 'X', '6': 'q', '7': 'G', '8': '_', '9': 's', '-': '6', '_': 'S',
}

// alphabetTable maps a cipher output symbol to its base64 character. Part of
// the wire format.
var alphabetTable = map[byte]byte{
	'A': 't', 'B': 'Z', 'C': 'N', 'D': '1', 'E': 'd', 'F': 'K', 'G': '5', 'H': 'G',
	'I': '0', 'J': 'w', 'K': 'F', 'L': 'p', 'M': 'i', 'N': 'z', 'O': '3', 'P': 'L',
	'Q': '8', 'R': 'A', 'S': 'e', 'T': 'R', 'U': 'C', 'V': 'r', 'W': 'l', 'X': 'W',
	'Y': 'V', 'Z': 'M', 'a': '9', 'b': 'k', 'c': 'g', 'd': 'y', 'e': 'x', 'f': 'v',
	'g': 'c', 'h': 's', 'i': 'b', 'j': 'j', 'k': 'X', 'l': 'q', 'm': 'u', 'n': '-',
	'o': 'O', 'p': 'U', 'q': 'f', 'r': 'I', 's': 'Y', 't': 'm', 'u': 'o', 'v': '6',
	'w': '4', 'x': 'n', 'y': '2', 'z': 'a', '0': 'D', '1': 'E', '2': '7', '3': 'h',
	'4': 'S', '5': 'J', '6': 'Q', '7': 'P', '8': 'T', '9': '_', '-': 'B', '_': 'H',
}

var (
	keyIndicators = invertTable(keyTable)
	cipherSymbols = invertTable(alphabetTable)
	base64Values  = buildBase64Values()
)

// KeyTable returns a copy of the key indicator table.
func KeyTable() map[byte]byte {
	return copyTable(keyTable)
}

// AlphabetTable returns a copy of the cipher alphabet table.
func AlphabetTable() map[byte]byte {
	return copyTable(alphabetTable)
}

func copyTable(table map[byte]byte) map[byte]byte {
	out := make(map[byte]byte, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}

func invertTable(table map[byte]byte) map[byte]byte {
	inverse := make(map[byte]byte, len(table))
	for from, to := range table {
		inverse[to] = from
	}
	return inverse
}

// buildBase64Values returns the base64 value of every byte, -1 for bytes
// outside the alphabet.
func buildBase64Values() [256]int8 {
	var values [256]int8
	for i := range values {
		values[i] = -1
	}
	for i := 0; i < len(base64URLAlphabet); i++ {
		values[base64URLAlphabet[i]] = int8(i)
	}
	return values
}

// KeyFromIndicator returns the cipher key (0-63) announced by a token's key
// indicator symbol.
func KeyFromIndicator(indicator byte) (int, error) {
	std, ok := keyTable[indicator]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKeyCharacter, indicator)
	}
	return int(base64Values[std]), nil
}

// IndicatorForKey returns the key indicator symbol for key. Only the low six
// bits of key are used.
func IndicatorForKey(key int) byte {
	return keyIndicators[base64URLAlphabet[key&keyMask]]
}
