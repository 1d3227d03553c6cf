package fbscompare

import (
	"fmt"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/arloliu/flatwire/builder"
)

const numMetrics = 200

func BenchmarkEncode(b *testing.B) {
	for _, points := range BenchmarkSizes() {
		metrics := GenerateTestData(DefaultTestDataConfig(numMetrics, points))

		b.Run(fmt.Sprintf("flatbuffers/%dpts", points), func(b *testing.B) {
			fb := flatbuffers.NewBuilder(1024)
			b.ReportAllocs()
			for b.Loop() {
				_ = EncodeFBS(fb, metrics)
			}
		})

		b.Run(fmt.Sprintf("flatwire/%dpts", points), func(b *testing.B) {
			fw, err := builder.NewBuilder()
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for b.Loop() {
				if _, err := EncodeFlatwire(fw, metrics); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	for _, points := range BenchmarkSizes() {
		metrics := GenerateTestData(DefaultTestDataConfig(numMetrics, points))
		buf := EncodeFBS(flatbuffers.NewBuilder(1024), metrics)

		b.Run(fmt.Sprintf("flatbuffers/%dpts", points), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = SummarizeFBS(buf)
			}
		})

		b.Run(fmt.Sprintf("flatwire/%dpts", points), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := SummarizeFlatwire(buf); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
