// Package logfile loads a merged UE/gNB simulator log into memory.
//
// The simulators write ISO-8859-15 text. Archived runs are often gzip or
// zstd compressed; the compression is detected from the leading magic bytes,
// so a file can be read regardless of its extension.
package logfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/charmap"
)

// Compression identifies the container format of a log file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// String returns a human-readable name for the compression.
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// maxLineSize bounds a single log line.
const maxLineSize = 1024 * 1024

// Log is the fully loaded content of a log file.
type Log struct {
	Path        string
	Compression Compression
	Lines       []string
	Bytes       int64
}

// ReadFile reads the whole log at path. The file is closed before returning
// whether or not the read succeeds.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	log.Path = path
	return log, nil
}

// Read loads every line from r, decompressing and decoding as needed.
func Read(r io.Reader) (*Log, error) {
	br := bufio.NewReader(r)

	compression, err := detect(br)
	if err != nil {
		return nil, err
	}

	var src io.Reader = br
	switch compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		src = zr
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	counter := &countingReader{r: src}
	decoded := charmap.ISO8859_15.NewDecoder().Reader(counter)

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	log := &Log{Compression: compression}
	for scanner.Scan() {
		log.Lines = append(log.Lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	log.Bytes = counter.n
	return log, nil
}

// detect peeks at the leading bytes without consuming them.
func detect(br *bufio.Reader) (Compression, error) {
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return CompressionNone, err
	}
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd, nil
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip, nil
	default:
		return CompressionNone, nil
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
