package cbor169

import (
	"fmt"

	"github.com/mosip/claim169-go/model"
)

// Encode renders a Claim169 record back into a CBOR-encoded integer-keyed
// map, the value carried at CWT claim key 169. Only populated fields are
// emitted; Unknown is never re-emitted.
func Encode(c *model.Claim169, opts Options) ([]byte, error) {
	out := make(map[int]any)

	setString(out, keyID, c.ID)
	setString(out, keyVersion, c.Version)
	setString(out, keyLanguage, c.Language)
	setString(out, keyFullName, c.FullName)
	setString(out, keyFirstName, c.FirstName)
	setString(out, keyMiddleName, c.MiddleName)
	setString(out, keyLastName, c.LastName)
	setString(out, keyDateOfBirth, c.DateOfBirth)
	if c.Gender != nil {
		out[keyGender] = int64(*c.Gender)
	}
	setString(out, keyAddress, c.Address)
	setString(out, keyEmail, c.Email)
	setString(out, keyPhone, c.Phone)
	setString(out, keyNationality, c.Nationality)
	if c.MaritalStatus != nil {
		out[keyMaritalStatus] = int64(*c.MaritalStatus)
	}
	setString(out, keyGuardian, c.Guardian)
	if c.Photo != nil {
		out[keyPhoto] = c.Photo
	}
	if c.PhotoFormat != nil {
		out[keyPhotoFormat] = int64(*c.PhotoFormat)
	}
	if len(c.BestQualityFingers) > 0 {
		fingers := make([]int64, len(c.BestQualityFingers))
		for i, v := range c.BestQualityFingers {
			fingers[i] = int64(v)
		}
		out[keyBestQualityFingers] = fingers
	}
	setString(out, keySecondaryFullName, c.SecondaryFullName)
	setString(out, keySecondaryLanguage, c.SecondaryLanguage)
	setString(out, keyLocationCode, c.LocationCode)
	setString(out, keyLegalStatus, c.LegalStatus)
	setString(out, keyCountryOfIssuance, c.CountryOfIssuance)

	if !opts.SkipBiometrics {
		for slot, entries := range c.Biometrics {
			if len(entries) == 0 {
				continue
			}
			encoded := make([]any, len(entries))
			for i, e := range entries {
				encoded[i] = encodeBiometricEntry(e)
			}
			out[int(slot.CBORKey())] = encoded
		}
	}

	encoded, err := encMode.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("claim169 cbor: encode: %w", err)
	}
	return encoded, nil
}

func encodeBiometricEntry(e model.BiometricEntry) map[int]any {
	m := make(map[int]any, 4)
	m[bioKeyData] = e.Data
	if e.Format != nil {
		m[bioKeyFormat] = int64(*e.Format)
	}
	if e.SubFormat != nil {
		m[bioKeySubFormat] = e.SubFormat.Raw()
	}
	if e.Issuer != nil {
		m[bioKeyIssuer] = *e.Issuer
	}
	return m
}

func setString(out map[int]any, key int, v *string) {
	if v != nil {
		out[key] = *v
	}
}
