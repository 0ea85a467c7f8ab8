// Package progress wraps the terminal progress bar used for multi-bundle
// runs. A nil *Bar is valid and does nothing, so callers never guard.
package progress

import (
	"github.com/schollz/progressbar/v3"
)

type Bar struct {
	bar *progressbar.ProgressBar
}

// New returns a bar tracking n steps, or nil when quiet.
func New(n int, description string, quiet bool) *Bar {
	if quiet {
		return nil
	}
	return &Bar{bar: progressbar.Default(int64(n), description)}
}

func (b *Bar) Add(n int) {
	if b == nil {
		return
	}
	_ = b.bar.Add(n)
}

func (b *Bar) Finish() {
	if b == nil {
		return
	}
	_ = b.bar.Finish()
}
