package storage

import "errors"

var ErrNotFound = errors.New("resource not found")
var ErrConflict = errors.New("resource conflict (e.g., duplicate key)")

// ErrStaleStatus is returned when a status write loses a race with another writer.
var ErrStaleStatus = errors.New("job status changed since it was read")
