// Package elfx loads the native .so libraries an Android APK embeds
// alongside its DEX files. It is an evidence oracle, not a disassembler: it
// exposes a library's symbol table, section list, and VA-to-file-offset
// mapping, which is everything internal/model needs to produce
// NativeSymbol evidence. It never disassembles or executes native code.
package elfx

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"dexlens/internal/model"
)

var (
	ErrNotELF       = errors.New("elfx: not an ELF file")
	ErrUnsupported  = errors.New("elfx: unsupported machine architecture")
	ErrNotShared    = errors.New("elfx: not a shared object")
	ErrNoSymbol     = errors.New("elfx: symbol not found")
	ErrNoSegment    = errors.New("elfx: no PT_LOAD segment covers address")
	ErrSymbolNoSize = errors.New("elfx: symbol has zero size")
)

// supportedMachines lists every ABI the Android NDK actually ships:
// arm64-v8a, armeabi-v7a, x86, x86_64.
var supportedMachines = map[elf.Machine]string{
	elf.EM_AARCH64: "arm64-v8a",
	elf.EM_ARM:     "armeabi-v7a",
	elf.EM_386:     "x86",
	elf.EM_X86_64:  "x86_64",
}

// File wraps a debug/elf.File with convenience methods for Android native
// library analysis across every ABI the NDK ships.
type File struct {
	ELF  *elf.File
	raw  io.ReaderAt
	size int64
	abi  string
}

// Open opens an ELF file and validates it is a shared object for one of
// the Android ABIs this package understands.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfx: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("elfx: stat: %w", err)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}

	abi, ok := supportedMachines[ef.Machine]
	if !ok {
		ef.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ef.Machine)
	}
	if ef.Type != elf.ET_DYN {
		ef.Close()
		return nil, ErrNotShared
	}

	return &File{ELF: ef, raw: f, size: info.Size(), abi: abi}, nil
}

// Close releases resources.
func (f *File) Close() error {
	err := f.ELF.Close()
	if c, ok := f.raw.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// FileSize returns the size of the underlying file.
func (f *File) FileSize() int64 { return f.size }

// ABI names the Android ABI directory this library targets (e.g.
// "arm64-v8a"), as used under an APK's lib/<abi>/ tree.
func (f *File) ABI() string { return f.abi }

// Machine returns the raw ELF machine type.
func (f *File) Machine() elf.Machine { return f.ELF.Machine }

// Symbol looks up a dynamic symbol by exact name. Returns the symbol's
// virtual address and size.
func (f *File) Symbol(name string) (addr, size uint64, err error) {
	syms, err := f.ELF.DynamicSymbols()
	if err != nil {
		return 0, 0, fmt.Errorf("elfx: dynsym: %w", err)
	}
	for _, s := range syms {
		if s.Name == name {
			return s.Value, s.Size, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrNoSymbol, name)
}

// Symbols returns every named dynamic symbol as NativeSymbol evidence,
// tagged with libraryName (the APK-relative path a caller resolved this
// File from, e.g. "lib/arm64-v8a/libnative.so").
func (f *File) Symbols(libraryName string) ([]model.NativeSymbol, error) {
	syms, err := f.ELF.DynamicSymbols()
	if err != nil {
		return nil, fmt.Errorf("elfx: dynsym: %w", err)
	}
	out := make([]model.NativeSymbol, 0, len(syms))
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		out = append(out, model.NativeSymbol{
			Library: libraryName,
			Name:    s.Name,
			Address: s.Value,
			Size:    s.Size,
		})
	}
	return out, nil
}

// VAToFileOffset converts a virtual address to a file offset using PT_LOAD segments.
func (f *File) VAToFileOffset(va uint64) (uint64, error) {
	for _, p := range f.ELF.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if va >= p.Vaddr && va < p.Vaddr+p.Memsz {
			offset := va - p.Vaddr + p.Off
			if offset >= uint64(f.size) {
				return 0, fmt.Errorf("elfx: VA 0x%x maps to offset 0x%x beyond file size 0x%x", va, offset, f.size)
			}
			return offset, nil
		}
	}
	return 0, fmt.Errorf("%w: VA 0x%x", ErrNoSegment, va)
}

// ReadAt reads bytes from the underlying file at the given file offset.
func (f *File) ReadAt(buf []byte, off int64) (int, error) {
	return f.raw.ReadAt(buf, off)
}

// ReadBytesAtVA reads n bytes starting at the given virtual address.
func (f *File) ReadBytesAtVA(va uint64, n int) ([]byte, error) {
	off, err := f.VAToFileOffset(va)
	if err != nil {
		return nil, err
	}
	avail := f.size - int64(off)
	if avail <= 0 {
		return nil, fmt.Errorf("elfx: offset 0x%x at or past end of file", off)
	}
	if int64(n) > avail {
		n = int(avail)
	}
	buf := make([]byte, n)
	_, err = f.raw.ReadAt(buf, int64(off))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("elfx: read at 0x%x: %w", off, err)
	}
	return buf, nil
}

// SegmentInfo describes a PT_LOAD segment.
type SegmentInfo struct {
	Vaddr  uint64
	Memsz  uint64
	Filesz uint64
	Offset uint64
	Flags  elf.ProgFlag
}

// LoadSegments returns all PT_LOAD segments.
func (f *File) LoadSegments() []SegmentInfo {
	var segs []SegmentInfo
	for _, p := range f.ELF.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		segs = append(segs, SegmentInfo{
			Vaddr:  p.Vaddr,
			Memsz:  p.Memsz,
			Filesz: p.Filesz,
			Offset: p.Off,
			Flags:  p.Flags,
		})
	}
	return segs
}

// SectionInfo describes an ELF section, used for diagnostics and the
// query layer's section listing.
type SectionInfo struct {
	Name string
	Addr uint64
	Size uint64
}

// Sections returns every named section.
func (f *File) Sections() []SectionInfo {
	out := make([]SectionInfo, 0, len(f.ELF.Sections))
	for _, s := range f.ELF.Sections {
		if s.Name == "" {
			continue
		}
		out = append(out, SectionInfo{Name: s.Name, Addr: s.Addr, Size: s.Size})
	}
	return out
}

// ByteOrder returns the ELF byte order.
func (f *File) ByteOrder() binary.ByteOrder {
	return f.ELF.ByteOrder
}
