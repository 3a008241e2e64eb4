package registry

import (
	"fmt"

	"github.com/simonhull/mediasniff/internal/types"
)

// Guard runs fn, a call into a third-party parser, and turns a panic inside
// it into a *types.MalformedValueError for format.
func Guard(format types.Format, what string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &types.MalformedValueError{
				Format: format,
				Field:  what,
				Reason: fmt.Sprintf("parser panic: %v", r),
			}
		}
	}()
	return fn()
}
