package admin

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/dmitrijs2005/filedo/internal/cryptox"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var ErrNoKey = errors.New("no secret key: pass --key or set SECRET_KEY")

// secretKey resolves the key from the flag, the environment or a hidden
// prompt, in that order.
func (a *App) secretKey() (string, error) {
	if a.key != "" {
		return a.key, nil
	}
	if k := a.getenv("SECRET_KEY"); k != "" {
		return k, nil
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", ErrNoKey
	}
	if _, err := fmt.Fprint(a.stderr, "Enter secret key: "); err != nil {
		return "", err
	}
	key, err := readPassword(fd)
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	if len(key) == 0 {
		return "", ErrNoKey
	}
	return string(key), nil
}

func (a *App) codec() (*cryptox.ManifestCodec, error) {
	key, err := a.secretKey()
	if err != nil {
		return nil, err
	}
	return cryptox.NewManifestCodec(key)
}
