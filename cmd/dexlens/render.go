package main

import (
	"flag"
	"fmt"
	"os"

	"dexlens/internal/callgraph"
	"dexlens/internal/disasm"
	"dexlens/internal/render"
)

// cmdRender renders a Graphviz DOT graph for one method's control-flow
// (mode=cfg) or for the whole loaded dex set's call structure
// (mode=callgraph, mode=classgraph). Unlike the other subcommands, output
// is DOT text, not JSON — --out here names a file to write it to, not a
// directory.
func cmdRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	apk := fs.String("apk", "", "path to APK/ZIP")
	mode := fs.String("mode", "", "cfg|callgraph|classgraph")
	fqdn := fs.String("method", "", "method FQDN, required for mode=cfg")
	maxNodes := fs.Int("max-nodes", 0, "limit rendered nodes for callgraph/classgraph (0 = all)")
	outPath := fs.String("out", "", "write DOT to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *apk == "" || *mode == "" {
		return fmt.Errorf("--apk and --mode are required")
	}

	s, err := loadSession(*apk)
	if err != nil {
		return err
	}

	var dot string
	switch *mode {
	case "cfg":
		if *fqdn == "" {
			return fmt.Errorf("--method is required for mode=cfg")
		}
		method, err := s.FindMethodByFQDN(*fqdn)
		if err != nil {
			return err
		}
		if method.Code == nil {
			return fmt.Errorf("render: %s has no code body (abstract or native)", *fqdn)
		}
		insts := disasm.Disassemble(method.Code.Insns)
		if method.Class != nil && method.Class.DexIndex < len(s.Ctx.Dexes) {
			disasm.Resolve(insts, s.Ctx.Dexes[method.Class.DexIndex], s.Ctx)
		}
		cfg := disasm.BuildCFG(*fqdn, insts)
		dot = render.CFGDOT(cfg, render.NASA)

	case "callgraph":
		funcs := callgraph.FuncsFromContext(s.Ctx)
		dot = render.CallgraphDOT(funcs, "callgraph", render.NASA, *maxNodes)

	case "classgraph":
		funcs := callgraph.FuncsFromContext(s.Ctx)
		dot = render.ClassgraphDOT(funcs, "classgraph", render.NASA, *maxNodes)

	default:
		return fmt.Errorf("render: unknown mode %q", *mode)
	}

	if *outPath == "" {
		_, err := fmt.Fprint(os.Stdout, dot)
		return err
	}
	return os.WriteFile(*outPath, []byte(dot), 0o644)
}
