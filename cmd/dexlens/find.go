package main

import (
	"flag"
	"fmt"
	"os"

	"dexlens/internal/output"
	"dexlens/internal/query"
)

func cmdFind(args []string) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	apk := fs.String("apk", "", "path to APK/ZIP")
	kind := fs.String("kind", "", "class|method|field|string")
	pattern := fs.String("pattern", "", "regex to match against the entity's identifier")
	outDir := fs.String("out", "", "write result as JSON to <dir>/find.json instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *apk == "" || *kind == "" || *pattern == "" {
		return fmt.Errorf("--apk, --kind, and --pattern are required")
	}

	s, err := loadSession(*apk)
	if err != nil {
		return err
	}

	evs, err := s.Find(*pattern, query.Kind(*kind))
	if err != nil {
		return err
	}

	result, err := output.EvidenceListToJSON(evs)
	if err != nil {
		return err
	}
	return writeResult(*outDir, "find", result)
}

func writeResult(outDir, name string, v any) error {
	if outDir == "" {
		return output.Write(os.Stdout, v)
	}
	return output.WriteFile(outDir, name, v)
}
