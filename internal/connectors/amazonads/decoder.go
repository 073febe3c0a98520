package amazonads

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/adlumen/amzads/internal/core/domain"
)

// gzipMagic is the two-byte gzip header.
var gzipMagic = []byte{0x1f, 0x8b}

// DecodeReport decompresses and parses a downloaded report artifact into
// records. Compression is detected from the Content-Encoding hint or the
// gzip magic bytes; GZIP_JSON artifacts are gzip files even when served
// without an encoding header. Any failure is a malformed-artifact error:
// retrying a static artifact cannot change the outcome.
func DecodeReport(raw []byte, contentEncoding string) ([]domain.Record, error) {
	data := raw
	if contentEncoding == "gzip" || bytes.HasPrefix(raw, gzipMagic) {
		var err error
		data, err = gunzip(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: decompress: %v", domain.ErrMalformedReport, err)
		}
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: artifact is not valid JSON", domain.ErrMalformedReport)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: artifact is not a JSON array", domain.ErrMalformedReport)
	}

	rows := parsed.Array()
	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.NewRecord([]byte(row.Raw)))
	}
	return records, nil
}

// gunzip decompresses the whole artifact into memory.
func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return data, nil
}
