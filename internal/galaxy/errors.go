package galaxy

import "errors"

// ErrInvalidProfile indicates a profile parameter outside its valid range.
var ErrInvalidProfile = errors.New("galaxy: invalid profile parameter")
