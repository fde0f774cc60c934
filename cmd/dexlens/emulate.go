package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"dexlens/internal/output"
	"dexlens/internal/vm"
)

func cmdEmulate(args []string) error {
	fs := flag.NewFlagSet("emulate", flag.ExitOnError)
	apk := fs.String("apk", "", "path to APK/ZIP")
	fqdn := fs.String("method", "", "method FQDN, e.g. Lpkg/Name;->method(II)Ljava/lang/String;")
	argsCSV := fs.String("args", "", "comma-separated integer argument literals, each passed as a 32-bit int")
	outDir := fs.String("out", "", "write result as JSON to <dir>/emulate.json instead of stdout")
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

	vmArgs, err := parseIntArgs(*argsCSV)
	if err != nil {
		return err
	}

	ret, err := s.Emulate(method, vmArgs)
	if err != nil {
		return err
	}
	return writeResult(*outDir, "emulate", output.ValueToJSON(ret))
}

// parseIntArgs turns a "--args" CSV of integer literals into VInt Values,
// truncating each literal to 32 bits; it never produces a VLong. The CLI has no way to express a String/object receiver or
// argument — emulating methods that take those requires the Go API
// (internal/query.Session.Emulate) directly.
func parseIntArgs(csv string) ([]vm.Value, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	out := make([]vm.Value, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--args: %q is not an integer: %w", p, err)
		}
		out[i] = vm.VInt(int32(n))
	}
	return out, nil
}
