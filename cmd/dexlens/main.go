package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "find":
		err = cmdFind(os.Args[2:])
	case "cross-references":
		err = cmdCrossReferences(os.Args[2:])
	case "emulate":
		err = cmdEmulate(os.Args[2:])
	case "analyse-branches":
		err = cmdAnalyseBranches(os.Args[2:])
	case "get-static-field":
		err = cmdGetStaticField(os.Args[2:])
	case "native-symbols":
		err = cmdNativeSymbols(os.Args[2:])
	case "render":
		err = cmdRender(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `dexlens — Android APK static-analysis tool

Usage:
  dexlens find --apk <path> --kind <class|method|field|string> --pattern <regex> [--out <dir>]
      Search declared entities or string-pool contents by regex.

  dexlens cross-references --apk <path> --kind <class|method|field|string> --name <id> [--out <dir>]
      List every instruction site that references the named entity.

  dexlens emulate --apk <path> --method <fqdn> [--args <csv>] [--out <dir>]
      Run one static method to completion in the bytecode interpreter.
      --args takes comma-separated integer literals, each passed as a
      32-bit int (long args are not supported); String/object args
      are not supported from the CLI (use the Go API for those).

  dexlens analyse-branches --apk <path> --method <fqdn> [--conservative] [--out <dir>]
      Run the flow analyser over one method and report dead-branch verdicts.

  dexlens get-static-field --apk <path> --fqdn <field-fqdn> [--out <dir>]
      Run <clinit> if needed and print a static field's current value.

  dexlens native-symbols --apk <path> [--abi <abi>] [--out <dir>]
      List dynamic symbols across the APK's embedded native libraries.

  dexlens render --apk <path> --mode <cfg|callgraph|classgraph> [--method <fqdn>] [--max-nodes <n>] [--out <file>]
      Render a Graphviz DOT graph. mode=cfg requires --method and draws
      that method's basic-block control-flow graph; callgraph/classgraph
      draw the whole dex set's call structure. --out here is a file path
      for the DOT text, not a JSON output directory.

Entity identifiers:
  Class descriptor:  Lpkg/sub/Name;
  Method FQDN:       Lpkg/Name;->method(II)Ljava/lang/String;
  Field FQDN:         Lpkg/Name;->field:I

Flags:
  --apk <path>   Path to the APK/ZIP to analyze
  --out <dir>    Write result as JSON to <dir>/<command>.json instead of stdout
`)
}
