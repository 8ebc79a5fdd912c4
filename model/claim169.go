// Package model defines the typed Claim 169 identity record and the
// token metadata and X.509 header records that travel alongside it.
//
// Every field here is optional by design: the zero value of Claim169 is
// a record with nothing set, and every accessor is a pointer or has an
// explicit "ok" form.
package model

// Claim169 is the MOSIP Claim 169 identity payload.
type Claim169 struct {
	ID                  *string
	Version             *string
	Language            *string
	FullName            *string
	FirstName           *string
	MiddleName          *string
	LastName            *string
	DateOfBirth         *string // YYYYMMDD
	Gender              *Gender
	Address             *string
	Email               *string
	Phone               *string
	Nationality         *string
	MaritalStatus       *MaritalStatus
	Guardian            *string
	Photo               []byte
	PhotoFormat         *PhotoFormat
	BestQualityFingers  []int // values in [0,10]
	SecondaryFullName   *string
	SecondaryLanguage   *string
	LocationCode        *string
	LegalStatus         *string
	CountryOfIssuance   *string

	// Biometrics maps each populated slot to its sequence of captured
	// entries. A slot absent from the map means it wasn't present in
	// the source CBOR at all.
	Biometrics map[BiometricSlot][]BiometricEntry

	// Unknown holds CBOR keys outside 1-23 and 50-65, preserved as a
	// forward-compatible bag of JSON-shaped dynamic values. Never
	// re-emitted by the encoder.
	Unknown map[int64]any
}

// ClampBestQualityFingers drops any value outside [0,10], preserving
// order.
func ClampBestQualityFingers(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v >= 0 && v <= 10 {
			out = append(out, v)
		}
	}
	return out
}
