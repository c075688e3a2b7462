// Package compression provides the codecs used for stored draft and note payloads.
package compression

import "fmt"

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NoneCompressor stores payloads as they are.
type NoneCompressor struct{}

func (NoneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

// ByName returns the compressor configured under name: zstd, gzip or none.
func ByName(name string) (Compressor, error) {
	switch name {
	case "zstd":
		return ZstdCompressor{}, nil
	case "gzip":
		return GzipCompressor{}, nil
	case "none", "":
		return NoneCompressor{}, nil
	}
	return nil, fmt.Errorf("unknown compression %q", name)
}
