package testutil

import "encoding/binary"

// WADLump is one directory entry in a synthesized container file.
type WADLump struct {
	Name string
	Data []byte
}

// BuildWAD assembles a well-formed WAD byte stream: 12-byte header, lump
// data, then the 16-byte-per-entry directory. magic is "IWAD" or "PWAD"
// (anything else makes a deliberately bad header).
func BuildWAD(magic string, lumps []WADLump) []byte {
	const headerSize = 12

	dataSize := 0
	for _, l := range lumps {
		dataSize += len(l.Data)
	}
	dirOffset := headerSize + dataSize

	buf := make([]byte, 0, dirOffset+16*len(lumps))
	buf = append(buf, magic...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(lumps)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dirOffset))

	offset := headerSize
	for _, l := range lumps {
		buf = append(buf, l.Data...)
	}
	for _, l := range lumps {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(offset))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(l.Data)))
		buf = append(buf, padName(l.Name)...)
		offset += len(l.Data)
	}

	return buf
}

// padName encodes a lump name as a fixed 8-byte NUL-padded field.
func padName(name string) []byte {
	b := make([]byte, 8)
	copy(b, name)
	return b
}
