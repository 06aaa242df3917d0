// Package wad decodes the directory of a WAD container file.
//
// A WAD file starts with a 12-byte header (4-byte magic, lump count,
// directory offset), followed by lump data and a directory of 16-byte
// entries. Only the directory is decoded here; lump contents are never
// read beyond bounds validation. Input is untrusted, so every offset
// taken from the file is checked before use.
package wad

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	headerSize   = 12
	dirEntrySize = 16
	lumpNameSize = 8
)

var (
	// ErrMalformedHeader indicates an unrecognized magic tag or a header
	// whose count/offset fields are nonsensical (negative).
	ErrMalformedHeader = errors.New("malformed container header")

	// ErrTruncatedDirectory indicates a directory or lump byte range that
	// extends past the end of the file.
	ErrTruncatedDirectory = errors.New("truncated container directory")
)

// Lump is one named, byte-range-addressed record in the container directory.
type Lump struct {
	Name   string
	Offset int32
	Size   int32
}

// Index is the decoded directory of one container file.
type Index struct {
	LumpCount  int
	Lumps      []Lump
	LevelNames []string // ordered by first appearance, deduplicated
}

// Parse decodes the header and directory of a WAD byte stream.
// A container with zero lumps is valid. Parse never reads outside data.
func Parse(data []byte) (*Index, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d-byte header", ErrMalformedHeader, len(data), headerSize)
	}

	magic := string(data[0:4])
	if magic != "IWAD" && magic != "PWAD" {
		return nil, fmt.Errorf("%w: unrecognized magic %q", ErrMalformedHeader, magic)
	}

	lumpCount := int32(binary.LittleEndian.Uint32(data[4:8]))
	dirOffset := int32(binary.LittleEndian.Uint32(data[8:12]))
	if lumpCount < 0 || dirOffset < 0 {
		return nil, fmt.Errorf("%w: negative lump count or directory offset", ErrMalformedHeader)
	}

	// All arithmetic in int64: a hostile header can overflow int32.
	dirEnd := int64(dirOffset) + int64(lumpCount)*dirEntrySize
	if dirEnd > int64(len(data)) {
		return nil, fmt.Errorf("%w: directory claims %d entries at offset %d, past %d-byte file",
			ErrTruncatedDirectory, lumpCount, dirOffset, len(data))
	}

	idx := &Index{
		LumpCount: int(lumpCount),
		Lumps:     make([]Lump, 0, lumpCount),
	}
	seen := make(map[string]bool)

	for i := int64(0); i < int64(lumpCount); i++ {
		entry := data[int64(dirOffset)+i*dirEntrySize:][:dirEntrySize]

		lump := Lump{
			Offset: int32(binary.LittleEndian.Uint32(entry[0:4])),
			Size:   int32(binary.LittleEndian.Uint32(entry[4:8])),
			Name:   lumpName(entry[8 : 8+lumpNameSize]),
		}

		if lump.Offset < 0 || lump.Size < 0 {
			return nil, fmt.Errorf("%w: lump %q has negative offset or size", ErrTruncatedDirectory, lump.Name)
		}
		if int64(lump.Offset)+int64(lump.Size) > int64(len(data)) {
			return nil, fmt.Errorf("%w: lump %q spans [%d, %d) past %d-byte file",
				ErrTruncatedDirectory, lump.Name, lump.Offset, int64(lump.Offset)+int64(lump.Size), len(data))
		}

		idx.Lumps = append(idx.Lumps, lump)

		if name := strings.ToUpper(lump.Name); IsLevelMarker(name) && !seen[name] {
			seen[name] = true
			idx.LevelNames = append(idx.LevelNames, name)
		}
	}

	return idx, nil
}

// lumpName decodes a fixed-width, NUL-padded lump name field.
func lumpName(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// IsLevelMarker reports whether a lump name marks the start of a level's
// resource group: the ExMy episode/map pair or the MAPnn family.
func IsLevelMarker(name string) bool {
	switch len(name) {
	case 4:
		// E1M1 .. E9M9
		return name[0] == 'E' && isNonZeroDigit(name[1]) &&
			name[2] == 'M' && isNonZeroDigit(name[3])
	case 5:
		// MAP00 .. MAP99
		return strings.HasPrefix(name, "MAP") && isDigit(name[3]) && isDigit(name[4])
	default:
		return false
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNonZeroDigit(c byte) bool { return c >= '1' && c <= '9' }
