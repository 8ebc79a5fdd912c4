package model

// CwtMeta is the CWT claims metadata that travels alongside the Claim169
// payload at CBOR claim key 169.
type CwtMeta struct {
	Issuer    *string // claim key 1 (iss)
	Subject   *string // claim key 2 (sub)
	ExpiresAt *int64  // claim key 4 (exp), epoch seconds
	NotBefore *int64  // claim key 5 (nbf), epoch seconds
	IssuedAt  *int64  // claim key 6 (iat), epoch seconds
}
