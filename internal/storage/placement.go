package storage

import (
	"math/rand/v2"

	"github.com/dmitrijs2005/filedo/internal/common"
)

// Chooser picks an index in [0, n). *rand.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

type globalChooser struct{}

func (globalChooser) IntN(n int) int { return rand.IntN(n) }

// DefaultChooser draws from the process-wide math/rand/v2 source, which is
// safe for concurrent use.
var DefaultChooser Chooser = globalChooser{}

// PickRoot chooses the root an upload is placed in, uniformly at random.
// Every file of one upload goes to the same root.
func PickRoot(roots []string, rnd Chooser) (string, error) {
	if len(roots) == 0 {
		return "", common.ErrNoStorageConfigured
	}
	if rnd == nil {
		rnd = DefaultChooser
	}
	return roots[rnd.IntN(len(roots))], nil
}
