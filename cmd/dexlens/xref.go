package main

import (
	"flag"
	"fmt"
	"regexp"

	"dexlens/internal/model"
	"dexlens/internal/output"
	"dexlens/internal/query"
)

func cmdCrossReferences(args []string) error {
	fs := flag.NewFlagSet("cross-references", flag.ExitOnError)
	apk := fs.String("apk", "", "path to APK/ZIP")
	kind := fs.String("kind", "", "class|method|field|string")
	name := fs.String("name", "", "the entity's identifier (descriptor, FQDN, or literal string)")
	outDir := fs.String("out", "", "write result as JSON to <dir>/cross-references.json instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *apk == "" || *kind == "" || *name == "" {
		return fmt.Errorf("--apk, --kind, and --name are required")
	}

	s, err := loadSession(*apk)
	if err != nil {
		return err
	}

	entity, err := resolveEntity(s, *kind, *name)
	if err != nil {
		return err
	}

	refs, err := s.CrossReferences(entity)
	if err != nil {
		return err
	}

	result, err := output.EvidenceListToJSON(refs)
	if err != nil {
		return err
	}
	return writeResult(*outDir, "cross-references", result)
}

// resolveEntity turns a --kind/--name pair into the model.Evidence
// CrossReferences expects. Class/method/field resolve against the
// context's declared entities by an exact-match regex (cross_references
// names one concrete entity, not a pattern); string wraps the literal
// value directly, since string evidence isn't a declared entity to search
// for — it's compared by value in xref.Index.String.
func resolveEntity(s *query.Session, kind, name string) (model.Evidence, error) {
	if query.Kind(kind) == query.KindString {
		return model.NewStringEvidence(name), nil
	}

	matches, err := s.Find("^"+regexp.QuoteMeta(name)+"$", query.Kind(kind))
	if err != nil {
		return model.Evidence{}, err
	}
	if len(matches) == 0 {
		return model.Evidence{}, &query.NotFoundError{Kind: kind, Query: name}
	}
	return matches[0], nil
}
