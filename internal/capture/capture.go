// Package capture reads and writes recorded terminal input, so that a session
// can be decoded again later.
package capture

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

var gzipMagic = []byte{0x1f, 0x8b}
var bzip2Magic = []byte{0x42, 0x5a, 0x68}
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
var xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}

// Open opens a recorded capture. Compressed captures are decompressed
// transparently.
func Open(filename string) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	// Read the first 6 bytes to determine the compression type
	firstBytes := make([]byte, 6)
	_, err = io.ReadFull(file, firstBytes)
	if err == io.EOF {
		// File was empty
		_, err = file.Seek(0, io.SeekStart)
		return file, err
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	// Reset file reader to start of file
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to seek to start of %s: %w", filename, err)
	}

	switch {
	case bytes.HasPrefix(firstBytes, gzipMagic):
		log.Debug("Capture ", filename, " is gzip compressed")
		reader, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return readCloser{reader, file}, nil

	case bytes.HasPrefix(firstBytes, bzip2Magic):
		log.Debug("Capture ", filename, " is bzip2 compressed")
		return readCloser{bzip2.NewReader(file), file}, nil

	case bytes.HasPrefix(firstBytes, zstdMagic):
		log.Debug("Capture ", filename, " is zstd compressed")
		decoder, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return readCloser{decoder, closerFunc(func() error {
			decoder.Close()
			return file.Close()
		})}, nil

	case bytes.HasPrefix(firstBytes, xzMagic):
		log.Debug("Capture ", filename, " is xz compressed")
		xzReader, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return readCloser{xzReader, file}, nil
	}

	log.Debug("Capture ", filename, " is assumed to be uncompressed")
	return file, nil
}

// Create creates a new capture file, compressed according to the file name
// extension: .gz, .zst or .xz. Anything else is written as-is.
//
// Close the returned writer to flush everything to disk.
func Create(filename string) (io.WriteCloser, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(filename, ".gz"):
		return writeCloser{gzip.NewWriter(file), file}, nil

	case strings.HasSuffix(filename, ".zst"), strings.HasSuffix(filename, ".zstd"):
		encoder, err := zstd.NewWriter(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return writeCloser{encoder, file}, nil

	case strings.HasSuffix(filename, ".xz"):
		xzWriter, err := xz.NewWriter(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return writeCloser{xzWriter, file}, nil
	}

	return file, nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

func (rc readCloser) Close() error {
	return rc.closer.Close()
}

// Closes the compressor first so it can flush, then the file
type writeCloser struct {
	compressor io.WriteCloser
	file       *os.File
}

func (wc writeCloser) Write(p []byte) (int, error) {
	return wc.compressor.Write(p)
}

func (wc writeCloser) Close() error {
	err := wc.compressor.Close()
	fileErr := wc.file.Close()
	if err != nil {
		return err
	}
	return fileErr
}
