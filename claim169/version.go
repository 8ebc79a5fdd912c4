package claim169

// version is the semantic version of this module's wire-format contract
// (Base45/COSE/CWT/Claim169 layering), not its Go API surface.
const version = "1.0.0"

// Version returns the semver string identifying the wire contract this
// package implements`).
func Version() string { return version }
