package elfx

import (
	"os"
	"path/filepath"
	"testing"
)

func findSample(t *testing.T, name string) string {
	t.Helper()
	dir, _ := os.Getwd()
	for {
		p := filepath.Join(dir, "samples", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Skipf("sample %s not found", name)
		}
		dir = parent
	}
}

func TestOpenValid(t *testing.T) {
	path := findSample(t, "libnative-arm64.so")
	ef, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()

	if ef.FileSize() == 0 {
		t.Error("file size is 0")
	}
	if ef.ABI() != "arm64-v8a" {
		t.Errorf("ABI() = %q, want arm64-v8a", ef.ABI())
	}
}

func TestOpenRejectsNonELF(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "notelf")
	if err := os.WriteFile(tmp, []byte("not an ELF file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(tmp)
	if err == nil {
		t.Fatal("expected error for non-ELF file")
	}
}

func TestSymbolLookup(t *testing.T) {
	path := findSample(t, "libnative-arm64.so")
	ef, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()

	va, size, err := ef.Symbol("Java_com_example_Native_hello")
	if err != nil {
		t.Fatal(err)
	}
	if va == 0 {
		t.Error("VA is 0")
	}
	if size == 0 {
		t.Error("size is 0")
	}
}

func TestSymbolNotFound(t *testing.T) {
	path := findSample(t, "libnative-arm64.so")
	ef, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()

	_, _, err = ef.Symbol("_kNonExistentSymbol")
	if err == nil {
		t.Fatal("expected error for missing symbol")
	}
}

func TestSymbolsProducesNativeSymbolEvidence(t *testing.T) {
	path := findSample(t, "libnative-arm64.so")
	ef, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()

	syms, err := ef.Symbols("lib/arm64-v8a/libnative-arm64.so")
	if err != nil {
		t.Fatal(err)
	}
	if len(syms) == 0 {
		t.Fatal("no symbols returned")
	}
	for _, s := range syms {
		if s.Library != "lib/arm64-v8a/libnative-arm64.so" {
			t.Errorf("Library = %q", s.Library)
		}
		if s.Name == "" {
			t.Error("symbol with empty name")
		}
	}
}

func TestVAToFileOffset(t *testing.T) {
	path := findSample(t, "libnative-arm64.so")
	ef, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()

	va, _, err := ef.Symbol("Java_com_example_Native_hello")
	if err != nil {
		t.Fatal(err)
	}
	off, err := ef.VAToFileOffset(va)
	if err != nil {
		t.Fatal(err)
	}
	if off == 0 && va != 0 {
		t.Errorf("VA=0x%x FileOff=0x%x", va, off)
	}
}

func TestVAToFileOffsetInvalid(t *testing.T) {
	path := findSample(t, "libnative-arm64.so")
	ef, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()

	_, err = ef.VAToFileOffset(0xDEADBEEFDEADBEEF)
	if err == nil {
		t.Fatal("expected error for invalid VA")
	}
}

func TestLoadSegments(t *testing.T) {
	path := findSample(t, "libnative-arm64.so")
	ef, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()

	segs := ef.LoadSegments()
	if len(segs) == 0 {
		t.Fatal("no PT_LOAD segments")
	}
	for _, s := range segs {
		if s.Filesz == 0 && s.Memsz == 0 {
			t.Error("segment with zero size")
		}
	}
}

func TestSections(t *testing.T) {
	path := findSample(t, "libnative-arm64.so")
	ef, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ef.Close()

	secs := ef.Sections()
	if len(secs) == 0 {
		t.Fatal("no sections")
	}
}

func FuzzELFOpen(f *testing.F) {
	f.Add([]byte("\x7fELF\x02\x01\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	f.Add([]byte("not an elf at all"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		tmp := filepath.Join(t.TempDir(), "fuzz.so")
		if err := os.WriteFile(tmp, data, 0644); err != nil {
			t.Fatal(err)
		}
		ef, err := Open(tmp)
		if err != nil {
			return // expected
		}
		ef.FileSize()
		ef.LoadSegments()
		ef.Sections()
		ef.Symbol("nonexistent")
		ef.VAToFileOffset(0)
		ef.Close()
	})
}
