package admin

import "errors"

var errMissingTimestamp = errors.New("timestamp is required")
