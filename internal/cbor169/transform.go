// Package cbor169 implements the Claim 169 <-> CBOR transform: mapping
// the typed model.Claim169 record to and from an integer-keyed CBOR
// map. Keys this implementation doesn't recognize are preserved in
// Claim169.Unknown on decode; Encode does not re-emit them.
package cbor169

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/mosip/claim169-go/model"
)

var (
	encMode, _ = cbor.CanonicalEncOptions().EncMode()
	decMode, _ = cbor.DecOptions{}.DecMode()
)

// Claim169 CBOR key assignments.
const (
	keyID                  = 1
	keyVersion             = 2
	keyLanguage            = 3
	keyFullName            = 4
	keyFirstName           = 5
	keyMiddleName          = 6
	keyLastName            = 7
	keyDateOfBirth         = 8
	keyGender              = 9
	keyAddress             = 10
	keyEmail               = 11
	keyPhone               = 12
	keyNationality         = 13
	keyMaritalStatus       = 14
	keyGuardian            = 15
	keyPhoto               = 16
	keyPhotoFormat         = 17
	keyBestQualityFingers  = 18
	keySecondaryFullName   = 19
	keySecondaryLanguage   = 20
	keyLocationCode        = 21
	keyLegalStatus         = 22
	keyCountryOfIssuance   = 23

	biometricSlotKeyMin = 50
	biometricSlotKeyMax = 65
)

// Biometric entry CBOR key assignments.
const (
	bioKeyData      = 0
	bioKeyFormat    = 1
	bioKeySubFormat = 2
	bioKeyIssuer    = 3
)

// Options configures how a Claim169 map is decoded.
type Options struct {
	// SkipBiometrics drops keys 50-65 entirely during decode.
	SkipBiometrics bool
}

// Info reports decode-time facts the orchestrator turns into warnings.
type Info struct {
	HasUnknownFields bool
	BiometricsSkipped bool
}

// errInvalid wraps the Claim169Invalid case: a non-map top level, or a
// map with a non-integer key.
type errInvalid struct{ reason string }

func (e *errInvalid) Error() string { return "claim169 cbor: invalid: " + e.reason }

// IsInvalid reports whether err is the Claim169Invalid case.
func IsInvalid(err error) bool {
	_, ok := err.(*errInvalid)
	return ok
}

// Decode parses raw CBOR bytes (the value carried at CWT claim key 169)
// into a Claim169 record.
func Decode(raw []byte, opts Options) (*model.Claim169, Info, error) {
	var generic any
	if err := decMode.Unmarshal(raw, &generic); err != nil {
		return nil, Info{}, fmt.Errorf("claim169 cbor: %w", err)
	}

	rawMap, ok := generic.(map[any]any)
	if !ok {
		return nil, Info{}, &errInvalid{reason: "top level is not a map"}
	}

	fields := make(map[int64]any, len(rawMap))
	for k, v := range rawMap {
		ik, ok := asInt64(k)
		if !ok {
			return nil, Info{}, &errInvalid{reason: "map key is not an integer"}
		}
		fields[ik] = v
	}

	claim := &model.Claim169{}
	var info Info

	if v, ok := fields[keyID]; ok {
		claim.ID = asStringPtr(v)
	}
	if v, ok := fields[keyVersion]; ok {
		claim.Version = asStringPtr(v)
	}
	if v, ok := fields[keyLanguage]; ok {
		claim.Language = asStringPtr(v)
	}
	if v, ok := fields[keyFullName]; ok {
		claim.FullName = asStringPtr(v)
	}
	if v, ok := fields[keyFirstName]; ok {
		claim.FirstName = asStringPtr(v)
	}
	if v, ok := fields[keyMiddleName]; ok {
		claim.MiddleName = asStringPtr(v)
	}
	if v, ok := fields[keyLastName]; ok {
		claim.LastName = asStringPtr(v)
	}
	if v, ok := fields[keyDateOfBirth]; ok {
		claim.DateOfBirth = asStringPtr(v)
	}
	if v, ok := fields[keyGender]; ok {
		if i, ok := asInt64(v); ok {
			if g, ok := model.GenderFromInt(i); ok {
				claim.Gender = &g
			}
		}
	}
	if v, ok := fields[keyAddress]; ok {
		claim.Address = asStringPtr(v)
	}
	if v, ok := fields[keyEmail]; ok {
		claim.Email = asStringPtr(v)
	}
	if v, ok := fields[keyPhone]; ok {
		claim.Phone = asStringPtr(v)
	}
	if v, ok := fields[keyNationality]; ok {
		claim.Nationality = asStringPtr(v)
	}
	if v, ok := fields[keyMaritalStatus]; ok {
		if i, ok := asInt64(v); ok {
			if m, ok := model.MaritalStatusFromInt(i); ok {
				claim.MaritalStatus = &m
			}
		}
	}
	if v, ok := fields[keyGuardian]; ok {
		claim.Guardian = asStringPtr(v)
	}
	if v, ok := fields[keyPhoto]; ok {
		if b, ok := asBytes(v); ok {
			claim.Photo = b
		}
	}
	if v, ok := fields[keyPhotoFormat]; ok {
		if i, ok := asInt64(v); ok {
			if p, ok := model.PhotoFormatFromInt(i); ok {
				claim.PhotoFormat = &p
			}
		}
	}
	if v, ok := fields[keyBestQualityFingers]; ok {
		if arr, ok := v.([]any); ok {
			ints := make([]int, 0, len(arr))
			for _, elem := range arr {
				if i, ok := asInt64(elem); ok {
					ints = append(ints, int(i))
				}
			}
			claim.BestQualityFingers = model.ClampBestQualityFingers(ints)
		}
	}
	if v, ok := fields[keySecondaryFullName]; ok {
		claim.SecondaryFullName = asStringPtr(v)
	}
	if v, ok := fields[keySecondaryLanguage]; ok {
		claim.SecondaryLanguage = asStringPtr(v)
	}
	if v, ok := fields[keyLocationCode]; ok {
		claim.LocationCode = asStringPtr(v)
	}
	if v, ok := fields[keyLegalStatus]; ok {
		claim.LegalStatus = asStringPtr(v)
	}
	if v, ok := fields[keyCountryOfIssuance]; ok {
		claim.CountryOfIssuance = asStringPtr(v)
	}

	for key, v := range fields {
		switch {
		case key >= 1 && key <= keyCountryOfIssuance:
			// handled above
		case key >= biometricSlotKeyMin && key <= biometricSlotKeyMax:
			if opts.SkipBiometrics {
				info.BiometricsSkipped = true
				continue
			}
			slot, ok := model.BiometricSlotFromKey(key)
			if !ok {
				continue
			}
			entries := decodeBiometricValue(v)
			if len(entries) > 0 {
				if claim.Biometrics == nil {
					claim.Biometrics = make(map[model.BiometricSlot][]model.BiometricEntry)
				}
				claim.Biometrics[slot] = entries
			}
		default:
			info.HasUnknownFields = true
			if claim.Unknown == nil {
				claim.Unknown = make(map[int64]any)
			}
			claim.Unknown[key] = toDynamic(v)
		}
	}

	return claim, info, nil
}

func decodeBiometricValue(v any) []model.BiometricEntry {
	switch val := v.(type) {
	case map[any]any:
		if e, ok := decodeBiometricEntry(val); ok {
			return []model.BiometricEntry{e}
		}
		return nil
	case []any:
		entries := make([]model.BiometricEntry, 0, len(val))
		for _, elem := range val {
			m, ok := elem.(map[any]any)
			if !ok {
				continue
			}
			if e, ok := decodeBiometricEntry(m); ok {
				entries = append(entries, e)
			}
		}
		return entries
	default:
		return nil
	}
}

func decodeBiometricEntry(m map[any]any) (model.BiometricEntry, bool) {
	var entry model.BiometricEntry

	dataVal, hasData := m[int64(bioKeyData)]
	if !hasData {
		dataVal, hasData = m[uint64(bioKeyData)]
	}
	b, ok := asBytes(dataVal)
	if !hasData || !ok {
		return model.BiometricEntry{}, false
	}
	entry.Data = b

	var format *model.BiometricFormat
	if fv, ok := lookupInt(m, bioKeyFormat); ok {
		if i, ok := asInt64(fv); ok {
			if f, ok := model.BiometricFormatFromInt(i); ok {
				format = &f
				entry.Format = &f
			}
		}
	}

	if sv, ok := lookupInt(m, bioKeySubFormat); ok {
		if i, ok := asInt64(sv); ok {
			var sub model.BiometricSubFormat
			if format != nil {
				sub = model.DecodeBiometricSubFormat(*format, i)
			} else {
				sub = model.DecodeBiometricSubFormat(model.BiometricFormat(-1), i)
			}
			entry.SubFormat = &sub
		}
	}

	if iv, ok := lookupInt(m, bioKeyIssuer); ok {
		entry.Issuer = asStringPtr(iv)
	}

	return entry, true
}

func lookupInt(m map[any]any, key int64) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	if v, ok := m[uint64(key)]; ok {
		return v, true
	}
	return nil, false
}
