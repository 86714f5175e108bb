package booking

import "errors"

var ErrForbidden = errors.New("booking belongs to another user")
