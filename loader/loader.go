// Package loader (de)serializes the ZKIR program image format (spec.md §6,
// component O): a fixed header, a code section of 32-bit words, and a data
// section of bytes, with a SHA-256 checksum over the code section guarding
// against load-time corruption.
package loader

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/zkir-vm/zkir/isa"
	"github.com/zkir-vm/zkir/memory"
)

const (
	// Magic is the four-byte "ZKIR" tag at offset 0.
	Magic uint32 = 0x5A4B4952
	// Version is this tool's image format version; Decode rejects any
	// version newer than this one (spec.md §6, §7 UnsupportedVersion).
	Version uint32 = 0x00020001

	headerFixedSize = 44 // bytes through the packed config word, before the checksum
	checksumSize    = 32
	// HeaderSize is the total header length this implementation writes:
	// the fixed fields plus the code-section checksum.
	HeaderSize = headerFixedSize + checksumSize
)

// Header is the fixed-size preamble of a program image.
type Header struct {
	Magic          uint32
	Version        uint32
	Flags          uint32
	HeaderSize     uint32
	EntryPoint     uint32
	CodeWordCount  uint32
	DataByteCount  uint32
	StackSize      uint32
	NumInputs      uint32
	NumOutputs     uint32
	Cfg            isa.Config
	Checksum       [checksumSize]byte
}

// Image is a fully decoded program: header plus the code and data
// sections it describes.
type Image struct {
	Header Header
	Code   []uint32
	Data   []byte
}

// ChecksumMismatchError reports a code-section checksum that does not
// match the header (spec.md §7 ChecksumMismatch).
type ChecksumMismatchError struct{}

func (e *ChecksumMismatchError) Error() string { return "loader: code section checksum mismatch" }

// UnsupportedVersionError reports an image whose version is newer than
// this tool's (spec.md §7 UnsupportedVersion).
type UnsupportedVersionError struct{ Version uint32 }

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("loader: unsupported image version 0x%08x", e.Version)
}

// InvalidMagicError reports an image whose magic bytes do not read "ZKIR".
type InvalidMagicError struct{ Got uint32 }

func (e *InvalidMagicError) Error() string {
	return fmt.Sprintf("loader: invalid magic 0x%08x, want 0x%08x", e.Got, Magic)
}

// MisalignedCodeSizeError reports a code_word_count*4 that does not match
// the actual bytes the header claims (spec.md §3 invariant code_size%4==0).
type MisalignedCodeSizeError struct{ CodeSize uint32 }

func (e *MisalignedCodeSizeError) Error() string {
	return fmt.Sprintf("loader: code_size %d is not a multiple of 4", e.CodeSize)
}

func packConfig(cfg isa.Config) uint32 {
	return uint32(cfg.LimbBits) | uint32(cfg.DataLimbs)<<8 | uint32(cfg.AddrLimbs)<<16
}

func unpackConfig(v uint32) isa.Config {
	return isa.Config{
		LimbBits:  uint8(v),
		DataLimbs: uint8(v >> 8),
		AddrLimbs: uint8(v >> 16),
	}
}

func checksumCode(code []uint32) [checksumSize]byte {
	buf := make([]byte, len(code)*4)
	for i, w := range code {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return sha256.Sum256(buf)
}

// NewImage builds an image from an assembled code/data pair, computing
// the code-section checksum.
func NewImage(cfg isa.Config, entryPoint uint32, code []uint32, data []byte, stackSize, numInputs, numOutputs uint32) *Image {
	h := Header{
		Magic:         Magic,
		Version:       Version,
		HeaderSize:    HeaderSize,
		EntryPoint:    entryPoint,
		CodeWordCount: uint32(len(code)),
		DataByteCount: uint32(len(data)),
		StackSize:     stackSize,
		NumInputs:     numInputs,
		NumOutputs:    numOutputs,
		Cfg:           cfg,
		Checksum:      checksumCode(code),
	}
	return &Image{Header: h, Code: code, Data: data}
}

// Encode serializes img to its on-disk byte layout (little-endian
// throughout, spec.md §6).
func (img *Image) Encode() []byte {
	h := img.Header
	buf := make([]byte, HeaderSize+len(img.Code)*4+len(img.Data))
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	binary.LittleEndian.PutUint32(buf[8:], h.Flags)
	binary.LittleEndian.PutUint32(buf[12:], h.HeaderSize)
	binary.LittleEndian.PutUint32(buf[16:], h.EntryPoint)
	binary.LittleEndian.PutUint32(buf[20:], h.CodeWordCount)
	binary.LittleEndian.PutUint32(buf[24:], h.DataByteCount)
	binary.LittleEndian.PutUint32(buf[28:], h.StackSize)
	binary.LittleEndian.PutUint32(buf[32:], h.NumInputs)
	binary.LittleEndian.PutUint32(buf[36:], h.NumOutputs)
	binary.LittleEndian.PutUint32(buf[40:], packConfig(h.Cfg))
	copy(buf[headerFixedSize:], h.Checksum[:])

	off := int(h.HeaderSize)
	for _, w := range img.Code {
		binary.LittleEndian.PutUint32(buf[off:], w)
		off += 4
	}
	copy(buf[off:], img.Data)
	return buf
}

// Decode parses buf into an Image, validating the invariants from
// spec.md §3: magic matches, version is not newer than Version,
// code_word_count*4 is consistent, and the recomputed checksum over the
// code section matches the header.
func Decode(buf []byte) (*Image, error) {
	if len(buf) < headerFixedSize+checksumSize {
		return nil, fmt.Errorf("loader: image too short (%d bytes)", len(buf))
	}
	var h Header
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	if h.Magic != Magic {
		return nil, &InvalidMagicError{Got: h.Magic}
	}
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	if h.Version > Version {
		return nil, &UnsupportedVersionError{Version: h.Version}
	}
	h.Flags = binary.LittleEndian.Uint32(buf[8:])
	h.HeaderSize = binary.LittleEndian.Uint32(buf[12:])
	h.EntryPoint = binary.LittleEndian.Uint32(buf[16:])
	h.CodeWordCount = binary.LittleEndian.Uint32(buf[20:])
	h.DataByteCount = binary.LittleEndian.Uint32(buf[24:])
	h.StackSize = binary.LittleEndian.Uint32(buf[28:])
	h.NumInputs = binary.LittleEndian.Uint32(buf[32:])
	h.NumOutputs = binary.LittleEndian.Uint32(buf[36:])
	h.Cfg = unpackConfig(binary.LittleEndian.Uint32(buf[40:]))

	if h.HeaderSize < headerFixedSize+checksumSize || int(h.HeaderSize) > len(buf) {
		return nil, fmt.Errorf("loader: implausible header_size %d", h.HeaderSize)
	}
	copy(h.Checksum[:], buf[h.HeaderSize-checksumSize:h.HeaderSize])

	codeBytes := h.CodeWordCount * 4
	if codeBytes%4 != 0 {
		return nil, &MisalignedCodeSizeError{CodeSize: codeBytes}
	}
	codeStart := int(h.HeaderSize)
	codeEnd := codeStart + int(codeBytes)
	dataEnd := codeEnd + int(h.DataByteCount)
	if dataEnd > len(buf) {
		return nil, fmt.Errorf("loader: image truncated: want %d bytes, have %d", dataEnd, len(buf))
	}

	code := make([]uint32, h.CodeWordCount)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(buf[codeStart+i*4:])
	}
	data := append([]byte(nil), buf[codeEnd:dataEnd]...)

	if checksumCode(code) != h.Checksum {
		return nil, &ChecksumMismatchError{}
	}

	if err := h.Cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	return &Image{Header: h, Code: code, Data: data}, nil
}

// LoadIntoMemory writes img's code and data sections into mem at their
// canonical addresses and marks code read-only, per spec.md §4.5.
func LoadIntoMemory(mem *memory.Memory, img *Image) error {
	if err := mem.LoadCode(memory.CodeStart, img.Code); err != nil {
		return err
	}
	if err := mem.LoadData(memory.DataStart, img.Data); err != nil {
		return err
	}
	mem.CodeLoaded = true
	return nil
}
