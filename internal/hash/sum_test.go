package hash

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty", "", 0xef46db3751d8e999},
		{"short", "test", 0x4fdcca5ddb678139},
		{"long", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sum, Sum([]byte(tt.data)))
			assert.Equal(t, tt.sum, SumString(tt.data))
		})
	}
}

func TestDigest(t *testing.T) {
	d := NewDigest()
	d.Write([]byte("this is a longer "))
	d.Write([]byte("test string to hash"))
	assert.Equal(t, Sum([]byte("this is a longer test string to hash")), d.Sum64())
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	_, _ = seededRand.Read(b)

	return b
}

func BenchmarkSum(b *testing.B) {
	data := randBytes(24)
	b.ResetTimer()
	for b.Loop() {
		Sum(data)
	}
}
