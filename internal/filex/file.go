// Package filex holds the small filesystem helpers shared by the upload and
// packaging paths: directory creation, filename sanitizing and file saving.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DirPerm is used for every directory filex creates.
const DirPerm os.FileMode = 0o750

// ErrInvalidFilename is returned by SaveFile when nothing usable is left of
// the incoming name after sanitizing.
var ErrInvalidFilename = errors.New("invalid filename")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// EnsureDir creates dir (and parents) if it does not exist yet.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// SanitizeFilename reduces an untrusted client filename to a safe base name:
// accents are decomposed and non-ASCII dropped, path separators and runs of
// whitespace become single underscores, anything outside [A-Za-z0-9_.-] is
// removed and leading/trailing dots and underscores are stripped. Windows
// device names get an underscore prefix. The result may be empty.
//
//	SanitizeFilename("../../etc/passwd")   // "etc_passwd"
//	SanitizeFilename("Surat Keputusan.pdf") // "Surat_Keputusan.pdf"
func SanitizeFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	s := strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.Trim(s, "._")

	if s == "" {
		return ""
	}
	if _, reserved := windowsDeviceNames[strings.ToUpper(strings.SplitN(s, ".", 2)[0])]; reserved {
		s = "_" + s
	}
	return s
}

// SaveFile writes r into dir under the sanitized form of name and returns the
// full path. The content goes to a temporary file first and is renamed into
// place, so readers never see a half-written file. An existing file with the
// same name is replaced.
func SaveFile(dir, name string, r io.Reader) (string, error) {
	safe := SanitizeFilename(name)
	if safe == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	dest := filepath.Join(dir, safe)

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", dest, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close %s: %w", tmpName, closeErr)
	}

	if err := os.Chmod(tmpName, 0o640); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("rename %s to %s: %w", tmpName, dest, err)
	}

	return dest, nil
}
