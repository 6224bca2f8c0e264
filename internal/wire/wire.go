package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindValue byte = 1
	kindNull  byte = 2

	hdr = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt = errors.New("multicache: corrupt entry")
	magic4     = [...]byte{'M', 'C', 'A', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Value: magic(4) | ver(1) | kind(1=value) | vlen(u32 be) | payload(vlen)
func EncodeValue(payload []byte) []byte {
	return encode(kindValue, payload)
}

// Null: magic(4) | ver(1) | kind(2=null) | vlen(u32 be = 0)
func EncodeNull() []byte {
	return encode(kindNull, nil)
}

func encode(kind byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdr + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode returns the framed payload, or null=true for a null entry.
// The payload of a value entry is never nil, even when empty, and aliases b.
func Decode(b []byte) (payload []byte, null bool, err error) {
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return nil, false, ErrCorrupt
	}
	kind := b[5]
	vlen := int(binary.BigEndian.Uint32(b[6:hdr]))
	if vlen < 0 || vlen != len(b)-hdr { // exact length; no trailing bytes
		return nil, false, ErrCorrupt
	}

	switch kind {
	case kindNull:
		if vlen != 0 {
			return nil, false, ErrCorrupt
		}
		return nil, true, nil
	case kindValue:
		return b[hdr:len(b):len(b)], false, nil
	default:
		return nil, false, ErrCorrupt
	}
}
