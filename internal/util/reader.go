package util

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
)

// ErrPayloadTooLarge is returned by a PayloadReader once the limit has been reached.
var ErrPayloadTooLarge = errors.New("response body exceeded the maximum allowed size")

// PayloadReader reads a response body, decompressing it if it is gzipped, and fails once more than
// MaxBytes have been read. The limit applies to the decompressed bytes, which also guards against
// gzip bombs.
type PayloadReader struct {
	MaxBytes int64

	counter *countingReader
	limited *io.LimitedReader
	closer  io.Closer

	uncompressedBytesRead int64
}

// NewPayloadReader wraps body. If the body is not gzipped and maxBytes is zero or less, body is returned
// unchanged.
func NewPayloadReader(body io.ReadCloser, isGzipped bool, maxBytes int64) (io.ReadCloser, error) {
	if !isGzipped && maxBytes <= 0 {
		return body, nil
	}

	counter := &countingReader{source: body}
	var source io.Reader = counter
	if isGzipped {
		gz, err := gzip.NewReader(counter)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip response body: %w", err)
		}
		source = gz
	}
	if maxBytes <= 0 {
		return &PayloadReader{counter: counter, limited: &io.LimitedReader{R: source, N: -1}, closer: body}, nil
	}

	return &PayloadReader{
		MaxBytes: maxBytes,
		counter:  counter,
		// one extra byte tells us whether the body went past the limit
		limited: &io.LimitedReader{R: source, N: maxBytes + 1},
		closer:  body,
	}, nil
}

// BytesRead returns the number of bytes read from the underlying body.
func (r *PayloadReader) BytesRead() int64 {
	return r.counter.count
}

// UncompressedBytesRead returns the number of bytes returned to callers. It equals BytesRead if the body
// was not compressed.
func (r *PayloadReader) UncompressedBytesRead() int64 {
	return r.uncompressedBytesRead
}

func (r *PayloadReader) Read(p []byte) (int, error) {
	if r.limited.N < 0 {
		n, err := r.limited.R.Read(p)
		r.uncompressedBytesRead += int64(n)
		return n, err
	}
	n, err := r.limited.Read(p)
	if r.uncompressedBytesRead+int64(n) > r.MaxBytes {
		n = int(r.MaxBytes - r.uncompressedBytesRead)
		r.uncompressedBytesRead = r.MaxBytes
		_ = r.Close()
		return n, ErrPayloadTooLarge
	}
	r.uncompressedBytesRead += int64(n)
	return n, err
}

// Close closes the underlying body.
func (r *PayloadReader) Close() error {
	return r.closer.Close()
}

type countingReader struct {
	source io.Reader
	count  int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.source.Read(p)
	c.count += int64(n)
	return n, err
}
