package main

import (
	"crypto/sha256"
	"encoding/hex"

	"dexlens/internal/apkzip"
	"dexlens/internal/query"
)

// loadSession opens apk, parses every classes*.dex entry into one
// model.Context, and wraps it in a query.Session ready for find/
// cross-references/emulate/analyse-branches/get-static-field.
func loadSession(apkPath string) (*query.Session, error) {
	ctx, err := apkzip.LoadContext(apkPath, sha256Hex)
	if err != nil {
		return nil, err
	}
	return query.New(ctx), nil
}

func sha256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
