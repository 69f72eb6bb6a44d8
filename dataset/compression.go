package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the framing of a dataset document.
type Compression uint8

const (
	// CompressionAuto detects the framing from the name or the magic bytes.
	CompressionAuto Compression = iota
	// CompressionNone reads the document as plain JSON.
	CompressionNone
	// CompressionZSTD reads a zstd frame.
	CompressionZSTD
	// CompressionLZ4 reads an lz4 frame.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// CompressionFromName returns the compression implied by a file extension,
// or CompressionAuto when the name says nothing.
func CompressionFromName(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return CompressionZSTD
	case strings.HasSuffix(name, ".lz4"):
		return CompressionLZ4
	case strings.HasSuffix(name, ".json"):
		return CompressionNone
	default:
		return CompressionAuto
	}
}

// sniff peeks at the first bytes of r to detect a compression frame.
func sniff(br *bufio.Reader) Compression {
	head, _ := br.Peek(4)
	switch {
	case bytes.Equal(head, zstdMagic):
		return CompressionZSTD
	case bytes.Equal(head, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// readDocument reads the whole (decompressed) document from r.
func readDocument(r io.Reader, c Compression) ([]byte, Compression, error) {
	br := bufio.NewReader(r)
	if c == CompressionAuto {
		c = sniff(br)
	}

	switch c {
	case CompressionNone:
		data, err := io.ReadAll(br)
		return data, c, err
	case CompressionZSTD:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		data, err := io.ReadAll(dec)
		if err != nil {
			return nil, c, fmt.Errorf("zstd: %w", err)
		}
		return data, c, nil
	case CompressionLZ4:
		data, err := io.ReadAll(lz4.NewReader(br))
		if err != nil {
			return nil, c, fmt.Errorf("lz4: %w", err)
		}
		return data, c, nil
	default:
		return nil, c, fmt.Errorf("unknown compression %s", c)
	}
}

// Compress encodes a plain document with c. It is the inverse of the
// decoding done by Load and is used to produce compressed fixtures.
func Compress(w io.Writer, doc []byte, c Compression) error {
	switch c {
	case CompressionNone, CompressionAuto:
		_, err := w.Write(doc)
		return err
	case CompressionZSTD:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		if _, err := enc.Write(doc); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		if _, err := zw.Write(doc); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	default:
		return fmt.Errorf("unknown compression %s", c)
	}
}
