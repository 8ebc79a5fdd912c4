package cose

import "errors"

// Sentinel errors surfaced as CoseParse / UnsupportedCoseType / errors
// at the orchestrator layer.
var (
	errMissingAlgorithm = errors.New("missing algorithm in protected header")
	errNoPayload        = errors.New("no payload")
	errNoIV             = errors.New("no IV in either header")
	errNoCiphertext     = errors.New("no ciphertext")
	errUnsupportedType  = errors.New("unsupported COSE type")
)

// ErrMissingAlgorithm is returned when verification is requested but the
// protected header carries no algorithm. Always a fatal parse error.
var ErrMissingAlgorithm = errMissingAlgorithm

// ErrNoPayload is returned when a Sign1's payload is absent entirely.
var ErrNoPayload = errNoPayload

// ErrUnsupportedType is returned when none of the four envelope shapes
// parse.
var ErrUnsupportedType = errUnsupportedType

// ErrNoIV is returned when an Encrypt0 envelope carries no IV in either
// header.
var ErrNoIV = errNoIV

// ErrNoCiphertext is returned when an Encrypt0 envelope's ciphertext
// field is absent.
var ErrNoCiphertext = errNoCiphertext
