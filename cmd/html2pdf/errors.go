package main

import "errors"

// Sentinel errors for command-line operations.
var (
	ErrUsage     = errors.New("invalid usage")
	ErrReadInput = errors.New("failed to read input")
	ErrWritePDF  = errors.New("failed to write PDF")
)
