package domain

import "errors"

var ErrEmptySelection = errors.New("no cards selected")
