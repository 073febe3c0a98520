package amazonads

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlumen/amzads/internal/core/domain"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeReport_GzipJSONArray(t *testing.T) {
	raw := gzipBytes(t, []byte(`[{"a":1},{"a":2}]`))

	records, err := DecodeReport(raw, "gzip")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].Get("a").Int())
	assert.Equal(t, int64(2), records[1].Get("a").Int())
}

func TestDecodeReport_GzipDetectedByMagicBytes(t *testing.T) {
	raw := gzipBytes(t, []byte(`[{"clicks":7}]`))

	// No Content-Encoding hint; the magic bytes are enough.
	records, err := DecodeReport(raw, "")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].Get("clicks").Int())
}

func TestDecodeReport_PlainJSONArray(t *testing.T) {
	records, err := DecodeReport([]byte(`[{"date":"2024-01-01"}]`), "")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-01", records[0].Get("date").String())
}

func TestDecodeReport_EmptyArray(t *testing.T) {
	records, err := DecodeReport([]byte(`[]`), "")

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeReport_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		encoding string
	}{
		{name: "declared gzip but not gzip", raw: []byte("not gzip at all"), encoding: "gzip"},
		{name: "truncated gzip", raw: gzipBytes(t, []byte(`[{"a":1}]`))[:4], encoding: "gzip"},
		{name: "not json", raw: []byte("hello world"), encoding: ""},
		{name: "json but not an array", raw: []byte(`{"rows":[]}`), encoding: ""},
		{name: "gzip of non-json", raw: gzipBytes(t, []byte("garbage")), encoding: "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReport(tt.raw, tt.encoding)
			assert.ErrorIs(t, err, domain.ErrMalformedReport)
		})
	}
}
