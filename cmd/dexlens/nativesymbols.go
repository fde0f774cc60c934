package main

import (
	"flag"
	"fmt"
	"os"

	"dexlens/internal/apkzip"
	"dexlens/internal/elfx"
	"dexlens/internal/model"
	"dexlens/internal/output"
)

func cmdNativeSymbols(args []string) error {
	fs := flag.NewFlagSet("native-symbols", flag.ExitOnError)
	apk := fs.String("apk", "", "path to APK/ZIP")
	abi := fs.String("abi", "", "restrict to one ABI (arm64-v8a, armeabi-v7a, x86, x86_64); default all")
	outDir := fs.String("out", "", "write result as JSON to <dir>/native-symbols.json instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *apk == "" {
		return fmt.Errorf("--apk is required")
	}

	a, err := apkzip.Open(*apk)
	if err != nil {
		return err
	}
	defer a.Close()

	scratch, err := os.MkdirTemp("", "dexlens-native-*")
	if err != nil {
		return fmt.Errorf("native-symbols: scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	var all []model.NativeSymbol
	for _, lib := range a.NativeLibraries() {
		if *abi != "" && lib.ABI != *abi {
			continue
		}
		tmpPath, err := lib.ExtractTemp(scratch)
		if err != nil {
			return err
		}
		syms, err := readSymbols(tmpPath, lib.Name)
		os.Remove(tmpPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "native-symbols: %s: %v\n", lib.Name, err)
			continue
		}
		all = append(all, syms...)
	}

	evs := make([]model.Evidence, len(all))
	for i, ns := range all {
		evs[i] = model.NewNativeSymbolEvidence(ns)
	}
	result, err := output.EvidenceListToJSON(evs)
	if err != nil {
		return err
	}
	return writeResult(*outDir, "native-symbols", result)
}

func readSymbols(path, libraryName string) ([]model.NativeSymbol, error) {
	ef, err := elfx.Open(path)
	if err != nil {
		return nil, err
	}
	defer ef.Close()
	return ef.Symbols(libraryName)
}
