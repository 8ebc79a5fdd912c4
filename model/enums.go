package model

// Gender is a closed integer enum carried at Claim169 key 9.
//
// Reference: spec GLOSSARY "Gender codes".
type Gender int

const (
	GenderMale   Gender = 1
	GenderFemale Gender = 2
	GenderOther  Gender = 3
)

func GenderFromInt(v int64) (Gender, bool) {
	switch Gender(v) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(v), true
	default:
		return 0, false
	}
}

// MaritalStatus is a closed integer enum carried at Claim169 key 14.
type MaritalStatus int

const (
	MaritalStatusUnmarried MaritalStatus = 1
	MaritalStatusMarried   MaritalStatus = 2
	MaritalStatusDivorced  MaritalStatus = 3
)

func MaritalStatusFromInt(v int64) (MaritalStatus, bool) {
	switch MaritalStatus(v) {
	case MaritalStatusUnmarried, MaritalStatusMarried, MaritalStatusDivorced:
		return MaritalStatus(v), true
	default:
		return 0, false
	}
}

// PhotoFormat is a closed integer enum carried at Claim169 key 17.
type PhotoFormat int

const (
	PhotoFormatJPEG     PhotoFormat = 1
	PhotoFormatJPEG2000 PhotoFormat = 2
	PhotoFormatAVIF     PhotoFormat = 3
	PhotoFormatWEBP     PhotoFormat = 4
)

func PhotoFormatFromInt(v int64) (PhotoFormat, bool) {
	switch PhotoFormat(v) {
	case PhotoFormatJPEG, PhotoFormatJPEG2000, PhotoFormatAVIF, PhotoFormatWEBP:
		return PhotoFormat(v), true
	default:
		return 0, false
	}
}

// BiometricFormat is the outer format of a biometric entry (biometric key 1).
type BiometricFormat int

const (
	BiometricFormatImage    BiometricFormat = 0
	BiometricFormatTemplate BiometricFormat = 1
	BiometricFormatSound    BiometricFormat = 2
	BiometricFormatBioHash  BiometricFormat = 3
)

func BiometricFormatFromInt(v int64) (BiometricFormat, bool) {
	switch BiometricFormat(v) {
	case BiometricFormatImage, BiometricFormatTemplate, BiometricFormatSound, BiometricFormatBioHash:
		return BiometricFormat(v), true
	default:
		return 0, false
	}
}

// SubFormatKind distinguishes the known sub-format families from the
// fallback raw representation.
type SubFormatKind int

const (
	SubFormatImage SubFormatKind = iota
	SubFormatTemplate
	SubFormatSound
	SubFormatRaw
)

// ImageSubFormat enumerates sub-formats valid when BiometricFormat is Image.
type ImageSubFormat int64

const (
	ImageSubFormatPNG      ImageSubFormat = 0
	ImageSubFormatJPEG     ImageSubFormat = 1
	ImageSubFormatJPEG2000 ImageSubFormat = 2
	ImageSubFormatAVIF     ImageSubFormat = 3
	ImageSubFormatWEBP     ImageSubFormat = 4
	ImageSubFormatTIFF     ImageSubFormat = 5
	ImageSubFormatWSQ      ImageSubFormat = 6
)

// TemplateSubFormat enumerates sub-formats valid when BiometricFormat is Template.
type TemplateSubFormat int64

const (
	TemplateSubFormatANSI378    TemplateSubFormat = 0
	TemplateSubFormatISO197942 TemplateSubFormat = 1
	TemplateSubFormatNIST       TemplateSubFormat = 2
)

// SoundSubFormat enumerates sub-formats valid when BiometricFormat is Sound.
type SoundSubFormat int64

const (
	SoundSubFormatWAV SoundSubFormat = 0
	SoundSubFormatMP3 SoundSubFormat = 1
)

const vendorSubFormatRangeStart = 100
const vendorSubFormatRangeEnd = 200

// BiometricSubFormat is the decoded, typed combination of a biometric
// entry's outer format and its raw sub-format integer.
//
// Exactly one of the typed accessors is meaningful; use Kind to tell
// which, or Raw() for anything the typed enums don't cover (including
// the vendor ranges 100-200).
type BiometricSubFormat struct {
	kind     SubFormatKind
	image    ImageSubFormat
	template TemplateSubFormat
	sound    SoundSubFormat
	raw      int64
}

// Kind reports which typed family (if any) this sub-format belongs to.
func (s BiometricSubFormat) Kind() SubFormatKind { return s.kind }

// Image returns the image sub-format and whether Kind() == SubFormatImage.
func (s BiometricSubFormat) Image() (ImageSubFormat, bool) { return s.image, s.kind == SubFormatImage }

// Template returns the template sub-format and whether Kind() == SubFormatTemplate.
func (s BiometricSubFormat) Template() (TemplateSubFormat, bool) {
	return s.template, s.kind == SubFormatTemplate
}

// Sound returns the sound sub-format and whether Kind() == SubFormatSound.
func (s BiometricSubFormat) Sound() (SoundSubFormat, bool) { return s.sound, s.kind == SubFormatSound }

// Raw returns the original integer sub-format regardless of Kind.
func (s BiometricSubFormat) Raw() int64 { return s.raw }

// DecodeBiometricSubFormat combines an outer biometric format with a raw
// sub-format integer into a typed variant, falling back to Raw when the
// combination isn't a known one.
func DecodeBiometricSubFormat(format BiometricFormat, raw int64) BiometricSubFormat {
	isVendor := raw >= vendorSubFormatRangeStart && raw < vendorSubFormatRangeEnd
	switch format {
	case BiometricFormatImage:
		if !isVendor {
			if v, ok := imageSubFormatFromInt(raw); ok {
				return BiometricSubFormat{kind: SubFormatImage, image: v, raw: raw}
			}
		}
	case BiometricFormatTemplate:
		if !isVendor {
			if v, ok := templateSubFormatFromInt(raw); ok {
				return BiometricSubFormat{kind: SubFormatTemplate, template: v, raw: raw}
			}
		}
	case BiometricFormatSound:
		if v, ok := soundSubFormatFromInt(raw); ok {
			return BiometricSubFormat{kind: SubFormatSound, sound: v, raw: raw}
		}
	}
	return BiometricSubFormat{kind: SubFormatRaw, raw: raw}
}

func imageSubFormatFromInt(v int64) (ImageSubFormat, bool) {
	switch ImageSubFormat(v) {
	case ImageSubFormatPNG, ImageSubFormatJPEG, ImageSubFormatJPEG2000, ImageSubFormatAVIF,
		ImageSubFormatWEBP, ImageSubFormatTIFF, ImageSubFormatWSQ:
		return ImageSubFormat(v), true
	default:
		return 0, false
	}
}

func templateSubFormatFromInt(v int64) (TemplateSubFormat, bool) {
	switch TemplateSubFormat(v) {
	case TemplateSubFormatANSI378, TemplateSubFormatISO197942, TemplateSubFormatNIST:
		return TemplateSubFormat(v), true
	default:
		return 0, false
	}
}

func soundSubFormatFromInt(v int64) (SoundSubFormat, bool) {
	switch SoundSubFormat(v) {
	case SoundSubFormatWAV, SoundSubFormatMP3:
		return SoundSubFormat(v), true
	default:
		return 0, false
	}
}
