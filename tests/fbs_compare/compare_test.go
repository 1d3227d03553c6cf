package fbscompare

import (
	"fmt"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/flatwire/builder"
	"github.com/arloliu/flatwire/format"
	"github.com/arloliu/flatwire/frame"
)

func encodeBoth(t *testing.T, metrics []MetricData) ([]byte, []byte) {
	t.Helper()

	fbs := EncodeFBS(flatbuffers.NewBuilder(1024), metrics)

	b, err := builder.NewBuilder()
	require.NoError(t, err)
	fw, err := EncodeFlatwire(b, metrics)
	require.NoError(t, err)

	return fbs, fw
}

// TestCrossRead reads each runtime's output with both runtimes.
func TestCrossRead(t *testing.T) {
	for _, points := range BenchmarkSizes() {
		t.Run(fmt.Sprintf("%dpts", points), func(t *testing.T) {
			metrics := GenerateTestData(DefaultTestDataConfig(50, points))
			fbs, fw := encodeBoth(t, metrics)

			want := Summary{}
			for _, m := range metrics {
				want.add(m.ID, m.Timestamps, m.Values)
			}

			require.Equal(t, want, SummarizeFBS(fbs))
			require.Equal(t, want, SummarizeFBS(fw))

			got, err := SummarizeFlatwire(fbs)
			require.NoError(t, err)
			require.Equal(t, want, got)

			got, err = SummarizeFlatwire(fw)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

// TestEmptyMetricSet checks that an empty set is encoded and read identically.
func TestEmptyMetricSet(t *testing.T) {
	fbs, fw := encodeBoth(t, nil)

	require.Equal(t, Summary{}, SummarizeFBS(fw))

	got, err := SummarizeFlatwire(fbs)
	require.NoError(t, err)
	require.Equal(t, Summary{}, got)
}

// TestBufferSizes compares buffer sizes, raw and framed with each codec.
func TestBufferSizes(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, points := range BenchmarkSizes() {
		metrics := GenerateTestData(DefaultTestDataConfig(200, points))
		fbs, fw := encodeBoth(t, metrics)
		totalPoints := 200 * points

		t.Logf("200 metrics x %d points", points)
		for _, ct := range compressions {
			fbsFrame, err := frame.Encode(fbs, frame.WithCompression(ct))
			require.NoError(t, err)
			fwFrame, err := frame.Encode(fw, frame.WithCompression(ct))
			require.NoError(t, err)

			t.Logf("  %-5s flatbuffers %8d bytes (%.2f B/pt)  flatwire %8d bytes (%.2f B/pt)",
				ct, len(fbsFrame), float64(len(fbsFrame))/float64(totalPoints),
				len(fwFrame), float64(len(fwFrame))/float64(totalPoints))

			// Same objects, alignment rules and vtable sharing: raw sizes
			// only differ by padding.
			if ct == format.CompressionNone {
				require.InEpsilon(t, len(fbs), len(fw), 0.05)
			}
		}
	}
}
