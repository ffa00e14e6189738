package patient

import (
	"time"

	"github.com/google/uuid"
)

// Genders accepted for a patient record.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Address is the structured address attached to a patient. It is stored as a
// JSONB column but always read back into this typed form; the search core
// never sees an untyped map.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
}

// EmergencyContact is the person to notify for a patient.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
}

// InsuranceInfo holds the patient's health-plan details.
type InsuranceInfo struct {
	Provider string     `json:"provider"`
	Plan     string     `json:"plan"`
	Number   string     `json:"number"`
	Validity *time.Time `json:"validity,omitempty"`
}

// Patient maps to the patients table.
type Patient struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	Name              string            `db:"name" json:"name"`
	CPF               string            `db:"cpf" json:"cpf"`
	BirthDate         time.Time         `db:"birth_date" json:"birth_date"`
	Gender            string            `db:"gender" json:"gender"`
	Email             *string           `db:"email" json:"email,omitempty"`
	Phone             *string           `db:"phone" json:"phone,omitempty"`
	Address           *Address          `db:"address" json:"address,omitempty"`
	MedicalConditions []string          `db:"medical_conditions" json:"medical_conditions"`
	Medications       []string          `db:"medications" json:"medications"`
	Allergies         []string          `db:"allergies" json:"allergies"`
	EmergencyContact  *EmergencyContact `db:"emergency_contact" json:"emergency_contact,omitempty"`
	InsuranceInfo     *InsuranceInfo    `db:"insurance_info" json:"insurance_info,omitempty"`
	Notes             *string           `db:"notes" json:"notes,omitempty"`
	CreatedBy         *string           `db:"created_by" json:"created_by,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// Normalize guarantees the list-valued fields are never nil, so a missing
// value behaves identically to an empty list everywhere downstream.
func (p *Patient) Normalize() {
	if p.MedicalConditions == nil {
		p.MedicalConditions = []string{}
	}
	if p.Medications == nil {
		p.Medications = []string{}
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
}

// Age returns full years between birthDate and today, counting a year only
// once the birthday has been reached.
func Age(birthDate, today time.Time) int {
	years := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		years--
	}
	return years
}

// Response is the JSON shape returned by the patient endpoints. Dates are
// ISO dates and age is derived from the birth date at serialization time.
type Response struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	CPF               string            `json:"cpf"`
	BirthDate         string            `json:"birth_date"`
	Gender            string            `json:"gender"`
	Age               int               `json:"age"`
	Email             *string           `json:"email"`
	Phone             *string           `json:"phone"`
	Address           *Address          `json:"address"`
	MedicalConditions []string          `json:"medical_conditions"`
	Medications       []string          `json:"medications"`
	Allergies         []string          `json:"allergies"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact"`
	InsuranceInfo     *InsuranceInfo    `json:"insurance_info"`
	Notes             *string           `json:"notes"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewResponse builds the API response for a patient record.
func NewResponse(p *Patient) *Response {
	p.Normalize()
	return &Response{
		ID:                p.ID.String(),
		Name:              p.Name,
		CPF:               p.CPF,
		BirthDate:         p.BirthDate.Format("2006-01-02"),
		Gender:            p.Gender,
		Age:               Age(p.BirthDate, time.Now()),
		Email:             p.Email,
		Phone:             p.Phone,
		Address:           p.Address,
		MedicalConditions: p.MedicalConditions,
		Medications:       p.Medications,
		Allergies:         p.Allergies,
		EmergencyContact:  p.EmergencyContact,
		InsuranceInfo:     p.InsuranceInfo,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
