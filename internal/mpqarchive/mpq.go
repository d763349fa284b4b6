package mpqarchive

import (
	"bytes"
	"compress/bzip2"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zlib"
)

const (
	headerMagic      = "MPQ\x1a"
	userDataMagic    = "MPQ\x1b"
	headerSearchStep = 0x200
	minHeaderSize    = 32
	extHeaderSize    = 44
	maxSectorShift   = 20

	hashTypeOffset = 0
	hashTypeA      = 1
	hashTypeB      = 2
	hashTypeKey    = 3

	hashEntryEmpty = 0xFFFFFFFF
)

// Block table flags.
const (
	fileImplode      = 0x00000100
	fileCompress     = 0x00000200
	fileEncrypted    = 0x00010000
	fileFixKey       = 0x00020000
	filePatch        = 0x00100000
	fileSingleUnit   = 0x01000000
	fileDeleteMarker = 0x02000000
	fileSectorCRC    = 0x04000000
	fileExists       = 0x80000000
)

// Compression masks carried in the first byte of a compressed sector.
const (
	compressZlib  = 0x02
	compressBzip2 = 0x10
)

var (
	errMalformed   = errors.New("malformed mpq")
	errUnsupported = errors.New("unsupported mpq feature")
)

var cryptTable = buildCryptTable()

func buildCryptTable() *[0x500]uint32 {
	var table [0x500]uint32
	seed := uint32(0x00100001)
	for i := 0; i < 0x100; i++ {
		for j := i; j < 0x500; j += 0x100 {
			seed = (seed*125 + 3) % 0x2AAAAB
			hi := (seed & 0xFFFF) << 16
			seed = (seed*125 + 3) % 0x2AAAAB
			table[j] = hi | seed&0xFFFF
		}
	}
	return &table
}

// hashString hashes an entry name the way archive tables index it: ASCII
// case-insensitive with '/' treated as '\'.
func hashString(s string, hashType uint32) uint32 {
	seed1, seed2 := uint32(0x7FED7FED), uint32(0xEEEEEEEE)
	for i := 0; i < len(s); i++ {
		ch := uint32(normalizeNameByte(s[i]))
		seed1 = cryptTable[hashType<<8+ch] ^ (seed1 + seed2)
		seed2 = ch + seed1 + seed2 + seed2<<5 + 3
	}
	return seed1
}

func normalizeNameByte(c byte) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return c - 'a' + 'A'
	case c == '/':
		return '\\'
	}
	return c
}

// decryptBytes decrypts whole little-endian words of b in place. A trailing
// partial word is stored in the clear.
func decryptBytes(b []byte, key uint32) {
	seed := uint32(0xEEEEEEEE)
	for i := 0; i+4 <= len(b); i += 4 {
		seed += cryptTable[0x400+key&0xFF]
		plain := binary.LittleEndian.Uint32(b[i:]) ^ (key + seed)
		binary.LittleEndian.PutUint32(b[i:], plain)
		key = (^key<<0x15 + 0x11111111) | key>>0x0B
		seed = plain + seed + seed<<5 + 3
	}
}

type hashEntry struct {
	hashA      uint32
	hashB      uint32
	blockIndex uint32
}

type blockEntry struct {
	offset         int64
	compressedSize uint32
	fileSize       uint32
	flags          uint32
}

// archive is an open MPQ file. Offsets in its tables are relative to base,
// the position of the archive header.
type archive struct {
	f          *os.File
	size       int64
	base       int64
	sectorSize uint32
	hashes     []hashEntry
	blocks     []blockEntry
}

func openArchive(path string) (*archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	a := &archive{f: f, size: info.Size()}
	if err := a.readHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return a, nil
}

func (a *archive) Close() error {
	return a.f.Close()
}

func (a *archive) readHeader() error {
	magic := make([]byte, 16)
	for offset := int64(0); offset+minHeaderSize <= a.size; offset += headerSearchStep {
		if err := a.readAt(magic, offset); err != nil {
			return err
		}
		switch string(magic[:4]) {
		case headerMagic:
			return a.parseHeader(offset)
		case userDataMagic:
			candidate := offset + int64(binary.LittleEndian.Uint32(magic[8:]))
			if candidate+minHeaderSize > a.size {
				continue
			}
			if err := a.readAt(magic[:4], candidate); err != nil {
				return err
			}
			if string(magic[:4]) == headerMagic {
				return a.parseHeader(candidate)
			}
		}
	}
	return fmt.Errorf("%w: no archive header", errMalformed)
}

func (a *archive) parseHeader(offset int64) error {
	hdr := make([]byte, extHeaderSize)
	n, err := a.f.ReadAt(hdr, offset)
	if n < minHeaderSize {
		return fmt.Errorf("%w: truncated header: %v", errMalformed, err)
	}

	headerSize := binary.LittleEndian.Uint32(hdr[4:])
	version := binary.LittleEndian.Uint16(hdr[12:])
	shift := binary.LittleEndian.Uint16(hdr[14:])
	hashPos := int64(binary.LittleEndian.Uint32(hdr[16:]))
	blockPos := int64(binary.LittleEndian.Uint32(hdr[20:]))
	hashCount := binary.LittleEndian.Uint32(hdr[24:])
	blockCount := binary.LittleEndian.Uint32(hdr[28:])

	var hiBlockPos int64
	if version >= 1 && headerSize >= extHeaderSize && n >= extHeaderSize {
		hiBlockPos = int64(binary.LittleEndian.Uint64(hdr[32:]))
		hashPos |= int64(binary.LittleEndian.Uint16(hdr[40:])) << 32
		blockPos |= int64(binary.LittleEndian.Uint16(hdr[42:])) << 32
	}

	if shift > maxSectorShift {
		return fmt.Errorf("%w: sector size shift %d", errMalformed, shift)
	}
	if hashCount == 0 || int64(hashCount)*16 > a.size || int64(blockCount)*16 > a.size {
		return fmt.Errorf("%w: table sizes %d/%d exceed archive", errMalformed, hashCount, blockCount)
	}

	a.base = offset
	a.sectorSize = 512 << shift

	raw, err := a.readTable(hashPos, hashCount, hashString("(hash table)", hashTypeKey))
	if err != nil {
		return fmt.Errorf("hash table: %w", err)
	}
	a.hashes = make([]hashEntry, hashCount)
	for i := range a.hashes {
		w := raw[i*16:]
		a.hashes[i] = hashEntry{
			hashA:      binary.LittleEndian.Uint32(w),
			hashB:      binary.LittleEndian.Uint32(w[4:]),
			blockIndex: binary.LittleEndian.Uint32(w[12:]),
		}
	}

	raw, err = a.readTable(blockPos, blockCount, hashString("(block table)", hashTypeKey))
	if err != nil {
		return fmt.Errorf("block table: %w", err)
	}
	a.blocks = make([]blockEntry, blockCount)
	for i := range a.blocks {
		w := raw[i*16:]
		a.blocks[i] = blockEntry{
			offset:         int64(binary.LittleEndian.Uint32(w)),
			compressedSize: binary.LittleEndian.Uint32(w[4:]),
			fileSize:       binary.LittleEndian.Uint32(w[8:]),
			flags:          binary.LittleEndian.Uint32(w[12:]),
		}
	}

	if hiBlockPos != 0 && blockCount > 0 {
		hi := make([]byte, int(blockCount)*2)
		if err := a.readAt(hi, a.base+hiBlockPos); err != nil {
			return fmt.Errorf("high block table: %w", err)
		}
		for i := range a.blocks {
			a.blocks[i].offset |= int64(binary.LittleEndian.Uint16(hi[i*2:])) << 32
		}
	}
	return nil
}

func (a *archive) readTable(pos int64, entries uint32, key uint32) ([]byte, error) {
	raw := make([]byte, int(entries)*16)
	if err := a.readAt(raw, a.base+pos); err != nil {
		return nil, err
	}
	decryptBytes(raw, key)
	return raw, nil
}

func (a *archive) readAt(b []byte, offset int64) error {
	if offset < 0 || offset+int64(len(b)) > a.size {
		return fmt.Errorf("%w: read of %d bytes at %d past end of %d byte file", errMalformed, len(b), offset, a.size)
	}
	if _, err := a.f.ReadAt(b, offset); err != nil {
		return err
	}
	return nil
}

func (a *archive) find(name string) *blockEntry {
	count := uint32(len(a.hashes))
	start := hashString(name, hashTypeOffset) % count
	hashA, hashB := hashString(name, hashTypeA), hashString(name, hashTypeB)
	for i := uint32(0); i < count; i++ {
		entry := a.hashes[(start+i)%count]
		if entry.blockIndex == hashEntryEmpty {
			return nil
		}
		if entry.hashA != hashA || entry.hashB != hashB || entry.blockIndex >= uint32(len(a.blocks)) {
			continue
		}
		block := &a.blocks[entry.blockIndex]
		if block.flags&fileExists != 0 && block.flags&fileDeleteMarker == 0 {
			return block
		}
	}
	return nil
}

// FileByName returns the content of name. A nil slice and nil error mean the
// archive has no such entry.
func (a *archive) FileByName(name string) ([]byte, error) {
	block := a.find(name)
	if block == nil {
		return nil, nil
	}
	if block.flags&(filePatch|fileImplode) != 0 {
		return nil, fmt.Errorf("%w: %s has flags 0x%08x", errUnsupported, name, block.flags)
	}
	if block.fileSize == 0 {
		return []byte{}, nil
	}

	var key uint32
	if block.flags&fileEncrypted != 0 {
		key = fileKey(name, block)
	}
	if block.flags&fileSingleUnit != 0 {
		return a.readSingleUnit(block, key)
	}
	return a.readSectors(block, key)
}

func fileKey(name string, block *blockEntry) uint32 {
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		name = name[i+1:]
	}
	key := hashString(name, hashTypeKey)
	if block.flags&fileFixKey != 0 {
		key = (key + uint32(block.offset)) ^ block.fileSize
	}
	return key
}

func (a *archive) readSingleUnit(block *blockEntry, key uint32) ([]byte, error) {
	raw := make([]byte, block.compressedSize)
	if err := a.readAt(raw, a.base+block.offset); err != nil {
		return nil, err
	}
	if block.flags&fileEncrypted != 0 {
		decryptBytes(raw, key)
	}
	if block.flags&fileCompress != 0 && block.compressedSize < block.fileSize {
		return decompress(raw, block.fileSize)
	}
	return raw, nil
}

func (a *archive) readSectors(block *blockEntry, key uint32) ([]byte, error) {
	start := a.base + block.offset
	count := (block.fileSize + a.sectorSize - 1) / a.sectorSize
	encrypted := block.flags&fileEncrypted != 0

	if block.flags&fileCompress == 0 {
		raw := make([]byte, block.fileSize)
		if err := a.readAt(raw, start); err != nil {
			return nil, err
		}
		if encrypted {
			for i := uint32(0); i < count; i++ {
				lo := i * a.sectorSize
				decryptBytes(raw[lo:min(lo+a.sectorSize, block.fileSize)], key+i)
			}
		}
		return raw, nil
	}

	entries := count + 1
	if block.flags&fileSectorCRC != 0 {
		entries++
	}
	table := make([]byte, entries*4)
	if err := a.readAt(table, start); err != nil {
		return nil, err
	}
	if encrypted {
		decryptBytes(table, key-1)
	}

	out := make([]byte, 0, block.fileSize)
	for i := uint32(0); i < count; i++ {
		lo := binary.LittleEndian.Uint32(table[i*4:])
		hi := binary.LittleEndian.Uint32(table[i*4+4:])
		if hi < lo || hi > block.compressedSize {
			return nil, fmt.Errorf("%w: sector %d spans %d..%d of %d bytes", errMalformed, i, lo, hi, block.compressedSize)
		}
		sector := make([]byte, hi-lo)
		if err := a.readAt(sector, start+int64(lo)); err != nil {
			return nil, err
		}
		if encrypted {
			decryptBytes(sector, key+i)
		}
		want := min(a.sectorSize, block.fileSize-i*a.sectorSize)
		if uint32(len(sector)) < want {
			var err error
			if sector, err = decompress(sector, want); err != nil {
				return nil, fmt.Errorf("sector %d: %w", i, err)
			}
		}
		out = append(out, sector...)
	}
	if uint32(len(out)) != block.fileSize {
		return nil, fmt.Errorf("%w: decoded %d bytes, want %d", errMalformed, len(out), block.fileSize)
	}
	return out, nil
}

func decompress(data []byte, size uint32) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty compressed data", errMalformed)
	}

	var r io.Reader
	switch mask, payload := data[0], bytes.NewReader(data[1:]); mask {
	case compressZlib:
		zr, err := zlib.NewReader(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", errMalformed, err)
		}
		defer zr.Close()
		r = zr
	case compressBzip2:
		r = bzip2.NewReader(payload)
	default:
		return nil, fmt.Errorf("%w: compression 0x%02x", errUnsupported, mask)
	}

	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", errMalformed, err)
	}
	return out, nil
}
