package main

import (
	stderrors "errors"

	lcierrors "github.com/juliecode/julie/internal/errors"
)

// Exit codes per spec.md §6's CLI surface.
const (
	exitSuccess   = 0
	exitUsage     = 1
	exitIO        = 2
	exitAborted   = 3
)

// exitCode classifies err into one of the four codes the CLI surface
// promises, using the typed taxonomy internal/errors already builds every
// layer's failures from (SPEC_FULL §7). A nil err is success; anything
// this module didn't wrap falls back to the I/O bucket since most
// unwrapped errors here originate from os/database calls.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}

	var usageErr *lcierrors.UsageError
	if stderrors.As(err, &usageErr) {
		return exitUsage
	}

	var parseErr *lcierrors.ParseError
	var extractorErr *lcierrors.ExtractorError
	if stderrors.As(err, &parseErr) || stderrors.As(err, &extractorErr) {
		return exitAborted
	}

	return exitIO
}
