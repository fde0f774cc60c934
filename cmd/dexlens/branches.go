package main

import (
	"flag"
	"fmt"

	"dexlens/internal/output"
)

func cmdAnalyseBranches(args []string) error {
	fs := flag.NewFlagSet("analyse-branches", flag.ExitOnError)
	apk := fs.String("apk", "", "path to APK/ZIP")
	fqdn := fs.String("method", "", "method FQDN")
	conservative := fs.Bool("conservative", false, "treat an undecidable guard's sides as both reachable")
	outDir := fs.String("out", "", "write result as JSON to <dir>/analyse-branches.json instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *apk == "" || *fqdn == "" {
		return fmt.Errorf("--apk and --method are required")
	}

	s, err := loadSession(*apk)
	if err != nil {
		return err
	}

	method, err := s.FindMethodByFQDN(*fqdn)
	if err != nil {
		return err
	}

	branches, err := s.AnalyseBranches(method, *conservative)
	if err != nil {
		return err
	}
	return writeResult(*outDir, "analyse-branches", output.BranchingListToJSON(branches))
}
