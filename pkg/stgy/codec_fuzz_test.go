//go:build fuzz
// +build fuzz

package stgy

import (
	"bytes"
	"testing"
)

// FuzzDecodeStgy checks that arbitrary tokens never panic and that anything
// accepted re-encodes to the same record.
func FuzzDecodeStgy(f *testing.F) {
	token, err := NewCodec().Encode(exampleBoard())
	if err != nil {
		f.Fatal(err)
	}
	f.Add(token)
	f.Add("")
	f.Add("[stgy:a]")
	f.Add("[stgy:apAAAAAAAAAAAA]")

	f.Fuzz(func(t *testing.T, token string) {
		record, err := DecodeStgy(token)
		if err != nil {
			return
		}
		again, err := EncodeStgy(record)
		if err != nil {
			t.Fatalf("EncodeStgy failed for accepted record: %v", err)
		}
		back, err := DecodeStgy(again)
		if err != nil {
			t.Fatalf("DecodeStgy failed on re-encoded token: %v", err)
		}
		if !bytes.Equal(record, back) {
			t.Errorf("record changed across re-encode")
		}
	})
}

// FuzzParseBoardData checks that parsed records serialize back to records
// that parse to the same board.
func FuzzParseBoardData(f *testing.F) {
	record, err := SerializeBoardData(exampleBoard())
	if err != nil {
		f.Fatal(err)
	}
	f.Add(record)
	f.Add(make([]byte, recordHeaderSize))

	f.Fuzz(func(t *testing.T, data []byte) {
		board, err := ParseBoardData(data)
		if err != nil {
			return
		}
		out, err := SerializeBoardData(board)
		if err != nil {
			// Parsed strings may contain bytes the serializer rejects.
			return
		}
		again, err := ParseBoardData(out)
		if err != nil {
			t.Fatalf("ParseBoardData failed on serialized board: %v", err)
		}
		if again.Name != board.Name || len(again.Objects) != len(board.Objects) {
			t.Errorf("board changed across round trip")
		}
	})
}
