package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mosip/claim169-go/model"
)

// claimDocument is the JSON shape the encode command reads a claim and
// its CWT metadata from: a flat, scriptable subset of model.Claim169's
// fields plus model.CwtMeta, in place of the CBOR-keyed wire format.
type claimDocument struct {
	ID                string `json:"id,omitempty"`
	FullName          string `json:"full_name,omitempty"`
	FirstName         string `json:"first_name,omitempty"`
	MiddleName        string `json:"middle_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	Address           string `json:"address,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
	Gender            *int   `json:"gender,omitempty"`
	CountryOfIssuance string `json:"country_of_issuance,omitempty"`

	Issuer    string `json:"issuer,omitempty"`
	Subject   string `json:"subject,omitempty"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
	NotBefore *int64 `json:"not_before,omitempty"`
	IssuedAt  *int64 `json:"issued_at,omitempty"`
}

func readClaimDocument(path string) (claimDocument, error) {
	var doc claimDocument

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read claim document %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse claim document %s: %w", path, err)
	}
	return doc, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (doc claimDocument) toClaim() *model.Claim169 {
	claim := &model.Claim169{
		ID:                strPtr(doc.ID),
		FullName:          strPtr(doc.FullName),
		FirstName:         strPtr(doc.FirstName),
		MiddleName:        strPtr(doc.MiddleName),
		LastName:          strPtr(doc.LastName),
		DateOfBirth:       strPtr(doc.DateOfBirth),
		Address:           strPtr(doc.Address),
		Email:             strPtr(doc.Email),
		Phone:             strPtr(doc.Phone),
		Nationality:       strPtr(doc.Nationality),
		CountryOfIssuance: strPtr(doc.CountryOfIssuance),
	}
	if doc.Gender != nil {
		g := model.Gender(*doc.Gender)
		claim.Gender = &g
	}
	return claim
}

func (doc claimDocument) toMeta() model.CwtMeta {
	return model.CwtMeta{
		Issuer:    strPtr(doc.Issuer),
		Subject:   strPtr(doc.Subject),
		ExpiresAt: doc.ExpiresAt,
		NotBefore: doc.NotBefore,
		IssuedAt:  doc.IssuedAt,
	}
}

// decodedDocument is the JSON shape printed by the decode command.
type decodedDocument struct {
	Claim    claimDocument `json:"claim"`
	Status   string        `json:"status"`
	Warnings struct {
		UnknownFields              bool `json:"unknown_fields"`
		BiometricsSkipped          bool `json:"biometrics_skipped"`
		TimestampValidationSkipped bool `json:"timestamp_validation_skipped"`
		NonStandardCompression     bool `json:"non_standard_compression"`
	} `json:"warnings"`
}

func fromClaim(claim *model.Claim169, meta model.CwtMeta) claimDocument {
	var doc claimDocument
	if claim.ID != nil {
		doc.ID = *claim.ID
	}
	if claim.FullName != nil {
		doc.FullName = *claim.FullName
	}
	if claim.FirstName != nil {
		doc.FirstName = *claim.FirstName
	}
	if claim.MiddleName != nil {
		doc.MiddleName = *claim.MiddleName
	}
	if claim.LastName != nil {
		doc.LastName = *claim.LastName
	}
	if claim.DateOfBirth != nil {
		doc.DateOfBirth = *claim.DateOfBirth
	}
	if claim.Address != nil {
		doc.Address = *claim.Address
	}
	if claim.Email != nil {
		doc.Email = *claim.Email
	}
	if claim.Phone != nil {
		doc.Phone = *claim.Phone
	}
	if claim.Nationality != nil {
		doc.Nationality = *claim.Nationality
	}
	if claim.CountryOfIssuance != nil {
		doc.CountryOfIssuance = *claim.CountryOfIssuance
	}
	if claim.Gender != nil {
		g := int(*claim.Gender)
		doc.Gender = &g
	}
	if meta.Issuer != nil {
		doc.Issuer = *meta.Issuer
	}
	if meta.Subject != nil {
		doc.Subject = *meta.Subject
	}
	doc.ExpiresAt = meta.ExpiresAt
	doc.NotBefore = meta.NotBefore
	doc.IssuedAt = meta.IssuedAt
	return doc
}
