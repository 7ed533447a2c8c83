package fatinspect

import (
	"errors"
)

// These errors may occur while inspecting an image.
var (
	// ErrIO is returned if the image is missing or a read runs past its end.
	ErrIO = errors.New("could not read the image")
	// ErrMalformedBootSector is returned if the boot sector is too short or
	// describes a geometry nothing can be located with.
	ErrMalformedBootSector = errors.New("malformed boot sector")
	// ErrInvalidSlot is returned if a directory slot is not exactly 32 bytes.
	ErrInvalidSlot = errors.New("invalid directory slot")
	// ErrInvalidConfig is returned by Config.Validate and LoadConfig.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoPartition is returned if the requested partition does not exist.
	ErrNoPartition = errors.New("partition not found")
)
