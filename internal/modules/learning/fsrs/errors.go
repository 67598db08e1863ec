package fsrs

import "errors"

var ErrInvalidParameters = errors.New("fsrs: invalid parameters")
