package tui

import "errors"

// ErrMissingMirrorService is returned when the mirror service is not provided.
var ErrMissingMirrorService = errors.New("tui: mirror service is required")

// ErrMissingPrincipal is returned when no acting principal is provided.
var ErrMissingPrincipal = errors.New("tui: principal is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
