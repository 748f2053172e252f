package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRCA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want [2]byte
	}{
		{name: "Empty", data: nil, want: [2]byte{0x63, 0x63}},
		{name: "HLTA", data: []byte{0x50, 0x00}, want: [2]byte{0x57, 0xCD}},
		{name: "Read_Block_0", data: []byte{0x30, 0x00}, want: [2]byte{0x02, 0xA8}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CRCA(tt.data))
		})
	}
}

func TestAppendCRCA(t *testing.T) {
	t.Parallel()

	data := make([]byte, 2, 8)
	data[0], data[1] = 0x50, 0x00

	out := AppendCRCA(data)
	assert.Equal(t, []byte{0x50, 0x00, 0x57, 0xCD}, out)
	assert.Equal(t, []byte{0x50, 0x00, 0x00, 0x00}, data[:4], "input backing array untouched")
	assert.True(t, checkCRCA(out))

	out[3] ^= 0x01
	assert.False(t, checkCRCA(out))
	assert.False(t, checkCRCA([]byte{0x63, 0x63}))
}
