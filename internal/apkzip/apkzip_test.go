package apkzip

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// buildTestZip writes a temp ZIP containing the given name->contents pairs
// and returns its path; the caller's t.TempDir() cleans it up.
func buildTestZip(t *testing.T, dir string, entries map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	path := filepath.Join(dir, "test.apk")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	return path
}

func TestDexEntriesOrderedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	path := buildTestZip(t, dir, map[string][]byte{
		"classes.dex":          []byte("one"),
		"classes2.dex":         []byte("two"),
		"assets/classes3.dex":  []byte("not root, excluded"),
		"res/layout/thing.xml": []byte("irrelevant"),
	})

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	entries := a.DexEntries()
	if len(entries) != 2 {
		t.Fatalf("got %d dex entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Name != "classes.dex" || entries[1].Name != "classes2.dex" {
		t.Fatalf("unexpected order: %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestNativeLibrariesAcrossABIs(t *testing.T) {
	dir := t.TempDir()
	path := buildTestZip(t, dir, map[string][]byte{
		"lib/arm64-v8a/libnative.so":  []byte("arm64 bytes"),
		"lib/armeabi-v7a/libnative.so": []byte("armv7 bytes"),
		"lib/x86_64/libnative.so":     []byte("x86_64 bytes"),
		"lib/mips/libnative.so":       []byte("unsupported ABI, excluded"),
		"lib/arm64-v8a/readme.txt":    []byte("not a library, excluded"),
	})

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	libs := a.NativeLibraries()
	if len(libs) != 3 {
		t.Fatalf("got %d native libraries, want 3: %+v", len(libs), libs)
	}
	seen := map[string]bool{}
	for _, lib := range libs {
		seen[lib.ABI] = true
	}
	for _, abi := range []string{"arm64-v8a", "armeabi-v7a", "x86_64"} {
		if !seen[abi] {
			t.Fatalf("missing ABI %s in %+v", abi, libs)
		}
	}
}

// buildMinimalDex assembles a header-only DEX (every section empty) that
// dexfile.Parse accepts: just enough for LoadContext's recovery test to
// have one archive member that parses cleanly alongside one that doesn't.
func buildMinimalDex(t *testing.T) []byte {
	t.Helper()
	const headerSize = 0x70
	var out bytes.Buffer
	out.WriteString("dex\n035\x00")
	out.Write(make([]byte, 4+20)) // checksum + signature
	write := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		out.Write(b[:])
	}
	write(headerSize) // file_size
	write(headerSize) // header_size
	write(0x12345678) // endian_tag
	for i := 0; i < 17; i++ {
		write(0) // link/map/string/type/proto/field/method/class_def/data sizes+offs
	}
	if out.Len() != headerSize {
		panic("header layout drifted")
	}
	return out.Bytes()
}

func TestLoadContextSkipsFailedDexAndContinues(t *testing.T) {
	dir := t.TempDir()
	path := buildTestZip(t, dir, map[string][]byte{
		"classes.dex":  []byte("not a valid dex payload"),
		"classes2.dex": buildMinimalDex(t),
	})

	ctx, err := LoadContext(path, nil)
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if len(ctx.Dexes) != 1 || ctx.Dexes[0].Name != "classes2.dex" {
		t.Fatalf("expected only classes2.dex to load, got %+v", ctx.Dexes)
	}
	if len(ctx.FailedDexes) != 1 || ctx.FailedDexes[0].Name != "classes.dex" {
		t.Fatalf("expected classes.dex recorded as failed, got %+v", ctx.FailedDexes)
	}
	if ctx.FailedDexes[0].Err == nil {
		t.Error("failed dex entry should carry the underlying error")
	}
}

func TestExtractTempRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := buildTestZip(t, dir, map[string][]byte{
		"lib/arm64-v8a/libnative.so": []byte("hello elf bytes"),
	})

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	libs := a.NativeLibraries()
	if len(libs) != 1 {
		t.Fatalf("got %d libraries, want 1", len(libs))
	}

	tmpPath, err := libs[0].ExtractTemp(dir)
	if err != nil {
		t.Fatalf("ExtractTemp: %v", err)
	}
	defer os.Remove(tmpPath)

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		t.Fatalf("read extracted temp: %v", err)
	}
	if string(data) != "hello elf bytes" {
		t.Fatalf("got %q, want %q", data, "hello elf bytes")
	}
}
