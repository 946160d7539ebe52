package models

import (
	"credgate/pkg/domain"
	"credgate/pkg/strutil"
	"credgate/pkg/validation"
)

// RegisterHolderRequest carries the fields a holder registers with.
type RegisterHolderRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Secret      string `json:"password" validate:"required,min=8"`
	HolderID    string `json:"student_id" validate:"required,notblank"`
	FirstName   string `json:"first_name" validate:"required,notblank"`
	LastName    string `json:"last_name" validate:"required,notblank"`
	Institution string `json:"university" validate:"required,notblank"`
}

// Normalize trims fields and canonicalizes the email before validation.
func (r *RegisterHolderRequest) Normalize() {
	strutil.TrimStrings(&r.HolderID, &r.FirstName, &r.LastName, &r.Institution)
	r.Email = domain.NormalizeEmail(r.Email)
}

func (r *RegisterHolderRequest) Validate() error {
	return validation.Validate(r)
}

// RegisterIssuerRequest carries the fields an issuer registers with.
type RegisterIssuerRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Secret        string `json:"password" validate:"required,min=8"`
	IssuerID      string `json:"organization_id" validate:"required,notblank"`
	IssuerName    string `json:"organization_name" validate:"required,notblank"`
	ContactPerson string `json:"contact_person" validate:"required,notblank"`
}

func (r *RegisterIssuerRequest) Normalize() {
	strutil.TrimStrings(&r.IssuerID, &r.IssuerName, &r.ContactPerson)
	r.Email = domain.NormalizeEmail(r.Email)
}

func (r *RegisterIssuerRequest) Validate() error {
	return validation.Validate(r)
}

// LoginRequest carries login credentials for either role.
type LoginRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Secret string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = domain.NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	return validation.Validate(r)
}
