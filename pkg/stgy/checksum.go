package stgy

import "hash/crc32"

// keyMask selects the low six bits of a checksum as the cipher key.
const keyMask = 0x3F

// crcTable is the IEEE CRC-32 table (reflected 0xEDB88320).
var crcTable = crc32.MakeTable(crc32.IEEE)

// Checksum computes the IEEE CRC-32 of data.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// KeyFromChecksum derives the cipher key from a frame checksum. The key is
// therefore fully determined by the payload.
func KeyFromChecksum(crc uint32) int {
	return int(crc & keyMask)
}
