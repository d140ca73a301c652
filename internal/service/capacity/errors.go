package capacity

import "errors"

var (
	// ErrInternal возвращается при ошибках чтения хранилища
	ErrInternal = errors.New("capacity: internal error")
)
