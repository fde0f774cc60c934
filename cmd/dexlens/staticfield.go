package main

import (
	"flag"
	"fmt"

	"dexlens/internal/output"
)

func cmdGetStaticField(args []string) error {
	fs := flag.NewFlagSet("get-static-field", flag.ExitOnError)
	apk := fs.String("apk", "", "path to APK/ZIP")
	fqdn := fs.String("fqdn", "", "field FQDN, e.g. Lpkg/Name;->FIELD:I")
	outDir := fs.String("out", "", "write result as JSON to <dir>/get-static-field.json instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *apk == "" || *fqdn == "" {
		return fmt.Errorf("--apk and --fqdn are required")
	}

	s, err := loadSession(*apk)
	if err != nil {
		return err
	}

	val, ok, err := s.GetStaticField(*fqdn)
	if err != nil {
		return err
	}
	if !ok {
		return writeResult(*outDir, "get-static-field", map[string]any{"status": "not initialised"})
	}
	return writeResult(*outDir, "get-static-field", output.ValueToJSON(val))
}
