package cubes

import "errors"

var (
	ErrOutOfRange      = errors.New("cell id out of range")
	ErrAlreadyRevealed = errors.New("cell already revealed")
)
