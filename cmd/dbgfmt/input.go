package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type compression int

const (
	compressNone compression = iota
	compressGzip
	compressZstd
)

// compressionOf picks the codec from the file extension, falling back to
// the magic bytes at the start of the stream.
func compressionOf(name string, head []byte) compression {
	switch filepath.Ext(name) {
	case ".gz":
		return compressGzip
	case ".zst":
		return compressZstd
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return compressGzip
	case bytes.HasPrefix(head, zstdMagic):
		return compressZstd
	}
	return compressNone
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc *readCloser) Close() error {
	return rc.close()
}

// openInput opens a named file, or stdin for "-", decompressing it when
// needed.
func openInput(name string, stdin io.Reader) (io.ReadCloser, error) {
	var src io.ReadCloser
	if name == "-" {
		src = io.NopCloser(stdin)
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		src = f
	}

	rc, err := decompress(name, src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return rc, nil
}

func decompress(name string, src io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(src)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}

	switch compressionOf(name, head) {
	case compressGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &readCloser{Reader: zr, close: func() error {
			zr.Close()
			return src.Close()
		}}, nil
	case compressZstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return &readCloser{Reader: zr, close: func() error {
			zr.Close()
			return src.Close()
		}}, nil
	default:
		return &readCloser{Reader: br, close: src.Close}, nil
	}
}
