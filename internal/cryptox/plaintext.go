package cryptox

import (
	"bytes"
	"encoding/json"
)

// plaintextFormat tags how a decrypted manifest was encoded.
type plaintextFormat int

const (
	formatList   plaintextFormat = iota + 1 // JSON array of filenames
	formatScalar                            // legacy: the bare filename
)

func (f plaintextFormat) String() string {
	switch f {
	case formatList:
		return "list"
	case formatScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

type decodedManifest struct {
	format    plaintextFormat
	filenames []string
}

// decodePlaintext turns a decrypted payload into a filename list. A payload
// that parses as a JSON array of strings is the list form; any other payload
// is a single legacy filename. ok is false for an empty payload or an empty
// list.
func decodePlaintext(p []byte) (decodedManifest, bool) {
	if len(p) == 0 {
		return decodedManifest{}, false
	}

	if trimmed := bytes.TrimSpace(p); len(trimmed) > 0 && trimmed[0] == '[' {
		var names []string
		if err := json.Unmarshal(trimmed, &names); err == nil {
			if len(names) == 0 {
				return decodedManifest{}, false
			}
			return decodedManifest{format: formatList, filenames: names}, true
		}
	}

	return decodedManifest{format: formatScalar, filenames: []string{string(p)}}, true
}
