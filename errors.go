package sat2d

import "errors"

// ErrHandleNotFound is returned for handles that were never issued, or whose polygon was destroyed
var ErrHandleNotFound = errors.New("no polygon exists at this handle")
