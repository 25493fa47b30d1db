package barcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tintura-sst/internal/barcode"
)

func TestFormatSerial(t *testing.T) {
	assert.Equal(t, "ORD-1;X;M;00001", barcode.FormatSerial("ORD-1", "X", "M", 1))
	assert.Equal(t, "ORD-12;ST-9;XXL;00420", barcode.FormatSerial("ORD-12", "ST-9", "XXL", 420))
	assert.Equal(t, "ORD-1;X;M;123456", barcode.FormatSerial("ORD-1", "X", "M", 123456))
}

func TestParseSerial(t *testing.T) {
	s, err := barcode.ParseSerial(" ORD-1;X;M;00042\n")
	require.NoError(t, err)
	assert.Equal(t, barcode.Serial{OrderNo: "ORD-1", Style: "X", Size: "M", Sequence: 42}, s)
	assert.Equal(t, "ORD-1;X;M;00042", s.String())

	for _, bad := range []string{"", "ORD-1;X;M", "ORD-1;X;M;abc", "ORD-1;;M;00001", "ORD-1;X;M;00000"} {
		_, err := barcode.ParseSerial(bad)
		assert.ErrorIs(t, err, barcode.ErrMalformedSerial, bad)
	}
}

func TestValidSegment(t *testing.T) {
	assert.True(t, barcode.ValidSegment("ST-1"))
	assert.False(t, barcode.ValidSegment(" "))
	assert.False(t, barcode.ValidSegment("a;b"))
}
