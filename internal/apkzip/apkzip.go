// Package apkzip enumerates the entries of an Android APK (a plain ZIP
// archive) that the rest of dexlens cares about: the DEX files at the
// archive root and the native .so libraries under lib/<abi>/. It performs
// no parsing or analysis of its own — it hands raw bytes to
// internal/dexfile and internal/elfx.
package apkzip

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"dexlens/internal/model"
	"dexlens/internal/xlog"
)

var primaryDexPattern = regexp.MustCompile(`^classes[0-9]*\.dex$`)

// knownABIs mirrors elfx's supportedMachines table: the four ABI
// directories the Android NDK ships libraries under.
var knownABIs = []string{"arm64-v8a", "armeabi-v7a", "x86", "x86_64"}

// Archive is an opened APK/ZIP ready to enumerate.
type Archive struct {
	zr   *zip.ReadCloser
	path string
}

// Open opens path as a ZIP archive. The caller must Close it.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("apkzip: open %s: %w", path, err)
	}
	return &Archive{zr: zr, path: path}, nil
}

func (a *Archive) Close() error { return a.zr.Close() }

// DexEntries returns every classes*.dex entry at the archive root, in the
// conventional classes.dex, classes2.dex, classes3.dex... ordering (plain
// lexical order already sorts this way for up to classes9.dex; beyond
// that callers only rely on ordering for the primary/secondary split, not
// dex-index stability, since model.Context assigns DexIndex on add order).
func (a *Archive) DexEntries() []*zip.File {
	var out []*zip.File
	for _, f := range a.zr.File {
		if path.Dir(f.Name) == "." && primaryDexPattern.MatchString(path.Base(f.Name)) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NativeLibrary is one embedded .so file, tagged with the ABI directory it
// was found under.
type NativeLibrary struct {
	ABI  string
	Name string // full archive entry name, e.g. "lib/arm64-v8a/libnative.so"
	file *zip.File
}

// NativeLibraries returns every lib/<abi>/*.so entry across all four
// Android NDK ABIs (spec §2 "every embedded ... ELF file" makes no
// ABI-selection non-goal, unlike the teacher's ARM64-only scan).
func (a *Archive) NativeLibraries() []NativeLibrary {
	abiSet := make(map[string]bool, len(knownABIs))
	for _, abi := range knownABIs {
		abiSet[abi] = true
	}

	var out []NativeLibrary
	for _, f := range a.zr.File {
		dir := path.Dir(f.Name)
		if path.Dir(dir) != "lib" {
			continue
		}
		abi := path.Base(dir)
		if !abiSet[abi] || path.Ext(f.Name) != ".so" {
			continue
		}
		out = append(out, NativeLibrary{ABI: abi, Name: f.Name, file: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ReadAll reads the uncompressed contents of one archive entry.
func ReadAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("apkzip: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("apkzip: read entry %s: %w", f.Name, err)
	}
	return data, nil
}

// ExtractTemp writes a native library's bytes to a temp file under dir so
// it can be handed to elfx.Open, which needs a path on disk rather than an
// in-memory buffer. The caller is responsible for removing the returned
// path (via os.Remove) once done with it.
func (lib NativeLibrary) ExtractTemp(dir string) (string, error) {
	data, err := ReadAll(lib.file)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "apkzip-*.so")
	if err != nil {
		return "", fmt.Errorf("apkzip: create temp for %s: %w", lib.Name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("apkzip: write temp for %s: %w", lib.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("apkzip: close temp for %s: %w", lib.Name, err)
	}
	return tmp.Name(), nil
}

// LoadContext parses every DEX entry in the archive into a single
// model.Context, in entry-name order as DexEntries sorts them (so
// classes.dex becomes the first,
// primary DexFile and later classesN.dex shadow-resolve against it per
// spec §4.2). identifierOf, if non-nil, supplies the stable per-entry
// identifier BuildFromDex expects (e.g. a content hash); when nil, the
// archive entry name is used as the identifier.
//
// A DEX member that fails to read or parse does not abort the load: per
// spec §7 the failure is fatal only for that member. It is logged, recorded
// on ctx.FailedDexes, and the loader continues with the rest of the
// archive. LoadContext itself only fails to open the archive at all.
func LoadContext(path string, identifierOf func(data []byte) string) (*model.Context, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	ctx := model.NewContext()
	for _, f := range a.DexEntries() {
		data, err := ReadAll(f)
		if err != nil {
			xlog.Get().Warn("apkzip: skipping unreadable dex entry", zap.String("name", f.Name), zap.Error(err))
			ctx.AddFailedDex(f.Name, err)
			continue
		}
		id := f.Name
		if identifierOf != nil {
			id = identifierOf(data)
		}
		df, err := model.BuildFromDex(data, f.Name, id)
		if err != nil {
			wrapped := fmt.Errorf("apkzip: parse %s: %w", f.Name, err)
			xlog.Get().Warn("apkzip: skipping unparseable dex entry", zap.String("name", f.Name), zap.Error(wrapped))
			ctx.AddFailedDex(f.Name, wrapped)
			continue
		}
		ctx.AddDexFile(df)
	}
	return ctx, nil
}
