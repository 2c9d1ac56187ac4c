package patcher

import "errors"

var (
	ErrManifestMissing = errors.New("manifest file does not exist")
	ErrWriteError      = errors.New("failed to write manifest")
)
