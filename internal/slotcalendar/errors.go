package slotcalendar

import "errors"

var (
	ErrRead    = errors.New("slotcalendar: failed to read file")
	ErrParse   = errors.New("slotcalendar: failed to parse file")
	ErrInvalid = errors.New("slotcalendar: invalid slot calendar")
)
