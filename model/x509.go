package model

import "strings"

// Thumbprint is the {algorithm, hash_value} pair carried at COSE header
// label 34 (x5t).
//
// Algorithm is either a recognized COSE hash algorithm number (as a
// string-formatted integer, e.g. "-16") or a named hash algorithm
// string the producer chose to use instead. Use RecognizedHashLength
// to find out whether this implementation knows how long the digest
// should be for an Algorithm value.
type Thumbprint struct {
	Algorithm string
	HashValue []byte
}

// Recognized COSE hash algorithm identifiers (RFC 9360).
const (
	HashAlgorithmSHA256 = -16
	HashAlgorithmSHA384 = -43
	HashAlgorithmSHA512 = -44
)

// RecognizedHashLength returns the expected digest length in bytes for
// a recognized numeric COSE hash algorithm, and false for anything else
// (named strings, or numeric IDs this implementation doesn't special
// case). An unrecognized algorithm means length validation is simply
// not enforced — it is not an error.
func RecognizedHashLength(alg string) (int, bool) {
	switch alg {
	case "-16":
		return 32, true
	case "-43":
		return 48, true
	case "-44":
		return 64, true
	default:
		return 0, false
	}
}

// X509Headers carries the certificate hints lifted from COSE headers
// per RFC 9360.
type X509Headers struct {
	X5Bag   [][]byte // label 32: unordered set of DER certificates
	X5Chain [][]byte // label 33: ordered chain, leaf first
	X5T     *Thumbprint
	X5U     *string // label 35: URI string
}

// X5UIsHTTPS reports whether the x5u URI uses the https scheme. The
// core never fetches x5u itself; this helper exists
// so callers who do fetch it can refuse non-HTTPS URIs.
func X5UIsHTTPS(uri string) bool {
	return strings.HasPrefix(strings.ToLower(uri), "https://")
}
