package mpqarchive

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// archiveFile is one entry written by buildArchive. flags selects the storage
// layout: fileSingleUnit, fileCompress, fileEncrypted and fileFixKey.
type archiveFile struct {
	name  string
	data  []byte
	flags uint32
}

type archiveLayout struct {
	userData    bool
	sectorShift uint16
}

func writeArchive(t *testing.T, path string, layout archiveLayout, files ...archiveFile) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, buildArchive(t, layout, files...), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

// buildArchive writes a format 0 archive: header, entry data, hash table, then
// block table.
func buildArchive(t *testing.T, layout archiveLayout, files ...archiveFile) []byte {
	t.Helper()
	sectorSize := uint32(512) << layout.sectorShift

	hashCount := uint32(4)
	for hashCount < uint32(len(files))*2 {
		hashCount <<= 1
	}

	var body bytes.Buffer
	blocks := make([]byte, 0, len(files)*16)
	for _, f := range files {
		pos := uint32(minHeaderSize + body.Len())
		size := uint32(len(f.data))
		var key uint32
		if f.flags&fileEncrypted != 0 {
			key = hashString(f.name[strings.LastIndexAny(f.name, `\/`)+1:], hashTypeKey)
			if f.flags&fileFixKey != 0 {
				key = (key + pos) ^ size
			}
		}
		stored := encodeEntry(t, f, sectorSize, key)
		blocks = binary.LittleEndian.AppendUint32(blocks, pos)
		blocks = binary.LittleEndian.AppendUint32(blocks, uint32(len(stored)))
		blocks = binary.LittleEndian.AppendUint32(blocks, size)
		blocks = binary.LittleEndian.AppendUint32(blocks, f.flags|fileExists)
		body.Write(stored)
	}

	hashes := bytes.Repeat([]byte{0xFF}, int(hashCount)*16)
	for i, f := range files {
		slot := hashString(f.name, hashTypeOffset) % hashCount
		for binary.LittleEndian.Uint32(hashes[slot*16+12:]) != hashEntryEmpty {
			slot = (slot + 1) % hashCount
		}
		entry := hashes[slot*16:]
		binary.LittleEndian.PutUint32(entry, hashString(f.name, hashTypeA))
		binary.LittleEndian.PutUint32(entry[4:], hashString(f.name, hashTypeB))
		binary.LittleEndian.PutUint32(entry[8:], 0)
		binary.LittleEndian.PutUint32(entry[12:], uint32(i))
	}
	encryptBytes(hashes, hashString("(hash table)", hashTypeKey))
	encryptBytes(blocks, hashString("(block table)", hashTypeKey))

	hashPos := uint32(minHeaderSize + body.Len())
	blockPos := hashPos + uint32(len(hashes))
	archiveSize := blockPos + uint32(len(blocks))

	header := make([]byte, 0, minHeaderSize)
	header = append(header, headerMagic...)
	header = binary.LittleEndian.AppendUint32(header, minHeaderSize)
	header = binary.LittleEndian.AppendUint32(header, archiveSize)
	header = binary.LittleEndian.AppendUint16(header, 0)
	header = binary.LittleEndian.AppendUint16(header, layout.sectorShift)
	header = binary.LittleEndian.AppendUint32(header, hashPos)
	header = binary.LittleEndian.AppendUint32(header, blockPos)
	header = binary.LittleEndian.AppendUint32(header, hashCount)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(files)))

	var out bytes.Buffer
	if layout.userData {
		user := make([]byte, headerSearchStep)
		copy(user, userDataMagic)
		binary.LittleEndian.PutUint32(user[4:], headerSearchStep-16)
		binary.LittleEndian.PutUint32(user[8:], headerSearchStep)
		binary.LittleEndian.PutUint32(user[12:], 16)
		out.Write(user)
	}
	out.Write(header)
	out.Write(body.Bytes())
	out.Write(hashes)
	out.Write(blocks)
	return out.Bytes()
}

func encodeEntry(t *testing.T, f archiveFile, sectorSize, key uint32) []byte {
	t.Helper()
	encrypted := f.flags&fileEncrypted != 0
	size := uint32(len(f.data))

	if f.flags&fileSingleUnit != 0 {
		out := append([]byte(nil), f.data...)
		if f.flags&fileCompress != 0 {
			if packed := zlibSector(t, f.data); len(packed) < len(f.data) {
				out = packed
			}
		}
		if encrypted {
			encryptBytes(out, key)
		}
		return out
	}

	count := (size + sectorSize - 1) / sectorSize
	if f.flags&fileCompress == 0 {
		out := append([]byte(nil), f.data...)
		if encrypted {
			for i := uint32(0); i < count; i++ {
				lo := i * sectorSize
				encryptBytes(out[lo:min(lo+sectorSize, size)], key+i)
			}
		}
		return out
	}

	offsets := make([]uint32, count+1)
	offsets[0] = (count + 1) * 4
	var sectors bytes.Buffer
	for i := uint32(0); i < count; i++ {
		chunk := f.data[i*sectorSize : min((i+1)*sectorSize, size)]
		stored := append([]byte(nil), chunk...)
		if packed := zlibSector(t, chunk); len(packed) < len(chunk) {
			stored = packed
		}
		if encrypted {
			encryptBytes(stored, key+i)
		}
		sectors.Write(stored)
		offsets[i+1] = offsets[i] + uint32(len(stored))
	}
	table := make([]byte, 0, len(offsets)*4)
	for _, offset := range offsets {
		table = binary.LittleEndian.AppendUint32(table, offset)
	}
	if encrypted {
		encryptBytes(table, key-1)
	}
	return append(table, sectors.Bytes()...)
}

func zlibSector(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(compressZlib)
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

func encryptBytes(b []byte, key uint32) {
	seed := uint32(0xEEEEEEEE)
	for i := 0; i+4 <= len(b); i += 4 {
		plain := binary.LittleEndian.Uint32(b[i:])
		seed += cryptTable[0x400+key&0xFF]
		binary.LittleEndian.PutUint32(b[i:], plain^(key+seed))
		key = (^key<<0x15 + 0x11111111) | key>>0x0B
		seed = plain + seed + seed<<5 + 3
	}
}
