//go:build bench
// +build bench

package stgy

import (
	"fmt"
	"testing"
)

func benchBoard(objects int) *BoardData {
	b := &BoardData{Version: DefaultVersion, Width: 512, Height: 384, Name: "bench", BackgroundID: 1}
	for i := 0; i < objects; i++ {
		obj := BoardObject{
			ObjectID: uint16(1 + i%90),
			Position: Position{X: float64(i % 512), Y: float64(i % 384)},
			Size:     DefaultObjectSize,
			Flags:    ObjectFlags{Visible: true},
		}
		if i%10 == 0 {
			obj.ObjectID = TextObjectID
			obj.Text = String(fmt.Sprintf("label %d", i))
		}
		b.Objects = append(b.Objects, obj)
	}
	return b
}

func BenchmarkCodec_Encode(b *testing.B) {
	codec := NewCodec()

	for _, n := range []int{1, 16, 128} {
		board := benchBoard(n)
		b.Run(fmt.Sprintf("objects_%d", n), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.Encode(board); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCodec_Decode(b *testing.B) {
	codec := NewCodec()

	for _, n := range []int{1, 16, 128} {
		token, err := codec.Encode(benchBoard(n))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("objects_%d", n), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.Decode(token); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
