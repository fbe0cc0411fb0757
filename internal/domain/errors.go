package domain

import "errors"

var ErrSnapshotNotFound = errors.New("session snapshot not found")
