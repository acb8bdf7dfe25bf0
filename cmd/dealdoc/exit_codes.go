package main

import (
	"errors"
	"os"

	"github.com/alnah/go-dealdoc"
	"github.com/alnah/go-dealdoc/internal/config"
	"github.com/alnah/go-dealdoc/internal/dateutil"
	"github.com/alnah/go-dealdoc/internal/server"
)

// Exit codes for the dealdoc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // All agreements generated
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, template, or deal file
	ExitIO         = 3 // File not found, permission denied, address in use
	ExitGeneration = 4 // One or more agreements failed to generate
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Generation errors (exit 4)
	if errors.Is(err, dealdoc.ErrGenerationFailed) ||
		errors.Is(err, ErrBatchFailed) {
		return ExitGeneration
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadDealFile) ||
		errors.Is(err, server.ErrListen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidFlags) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrInvalidEnv) ||
		errors.Is(err, ErrNoDeals) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrParseDealFile) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, dateutil.ErrInvalidDate) ||
		errors.Is(err, dealdoc.ErrTemplateNotFound) ||
		errors.Is(err, dealdoc.ErrInvalidTemplate) ||
		errors.Is(err, dealdoc.ErrInvalidAssetPath) ||
		errors.Is(err, dealdoc.ErrInvalidAssetName) ||
		errors.Is(err, dealdoc.ErrInvalidDateFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
