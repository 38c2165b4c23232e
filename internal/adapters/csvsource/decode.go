package csvsource

import (
	"bufio"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const sniffSize = 64 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decompress wraps r according to the file extension. The returned closer
// releases decoder resources and is never nil.
func decompress(r io.Reader, path string) (io.Reader, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() error { zr.Close(); return nil }, nil
	case ".lz4":
		return lz4.NewReader(r), noop, nil
	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, noop, nil
	case ".br":
		return brotli.NewReader(r), noop, nil
	default:
		return r, noop, nil
	}
}

// decodeText returns a UTF-8 reader over r. Input that is not valid UTF-8
// in its first block is decoded as latin-1. A leading BOM is dropped.
func decodeText(r io.Reader) (io.Reader, bool, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, false, err
	}

	if bytes.HasPrefix(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, false, err
		}
		return br, false, nil
	}

	if validUTF8Prefix(head, len(head) == sniffSize) {
		return br, false, nil
	}
	return transform.NewReader(br, charmap.ISO8859_1.NewDecoder()), true, nil
}

// validUTF8Prefix reports whether b is valid UTF-8, ignoring a rune cut off
// at the end of a truncated block.
func validUTF8Prefix(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.Valid(b[:len(b)-i]) {
			return true
		}
	}
	return false
}
