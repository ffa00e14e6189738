package search

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinrec/clinrec/internal/domain/patient"
)

// -- Fixtures shared across the package tests --

var errStoreDown = errors.New("store down")

// memRepo is a read-only patient repository backed by a slice. Only the
// listing methods are exercised by the search core.
type memRepo struct {
	records []*patient.Patient
	failing bool
}

func (m *memRepo) ListAll(_ context.Context) ([]*patient.Patient, error) {
	if m.failing {
		return nil, errStoreDown
	}
	return m.records, nil
}

func (m *memRepo) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (m *memRepo) Create(_ context.Context, _ *patient.Patient) error {
	return errors.New("not implemented")
}

func (m *memRepo) GetByID(_ context.Context, _ uuid.UUID) (*patient.Patient, error) {
	return nil, errors.New("not implemented")
}

func (m *memRepo) GetByCPF(_ context.Context, _ string) (*patient.Patient, error) {
	return nil, errors.New("not implemented")
}

func (m *memRepo) Update(_ context.Context, _ *patient.Patient) error {
	return errors.New("not implemented")
}

func (m *memRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return errors.New("not implemented")
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func record(name, cpf, birth string, mutate ...func(*patient.Patient)) *patient.Patient {
	p := &patient.Patient{
		ID:        uuid.New(),
		Name:      name,
		CPF:       cpf,
		BirthDate: date(birth),
		Gender:    patient.GenderOther,
		CreatedAt: date(birth).Add(24 * time.Hour),
	}
	p.Normalize()
	for _, fn := range mutate {
		fn(p)
	}
	return p
}

// seedRecords is the canonical fixture: two diabetics and one control.
func seedRecords() []*patient.Patient {
	joao := record("João Silva", "11122233344", "1985-03-10", func(p *patient.Patient) {
		p.Gender = patient.GenderMale
		p.Email = strptr("joao.silva@example.com")
		p.Phone = strptr("11987654321")
		p.MedicalConditions = []string{"Diabetes Tipo 2", "Hipertensão"}
		p.Medications = []string{"Metformina"}
		p.Allergies = []string{"Penicilina"}
		p.Address = &patient.Address{Street: "Rua A", City: "São Paulo", State: "SP", ZipCode: "01000000"}
	})
	maria := record("Maria Souza", "55566677788", "1992-11-25", func(p *patient.Patient) {
		p.Gender = patient.GenderFemale
		p.Email = strptr("maria@example.com")
		p.MedicalConditions = []string{"Asma"}
		p.Address = &patient.Address{Street: "Rua B", City: "Rio de Janeiro", State: "RJ", ZipCode: "20000000"}
	})
	pedro := record("Pedro Santos", "99988877766", "1970-06-01", func(p *patient.Patient) {
		p.Gender = patient.GenderMale
		p.MedicalConditions = []string{"Diabetes Tipo 1"}
		p.Medications = []string{"Insulina"}
		p.Address = &patient.Address{Street: "Rua C", City: "São Paulo", State: "SP", ZipCode: "02000000"}
	})
	return []*patient.Patient{joao, maria, pedro}
}

func newTestService(records []*patient.Patient) (*Service, *memRepo) {
	repo := &memRepo{records: records}
	svc := NewService(NewStore(repo))
	svc.now = func() time.Time { return date("2024-06-15") }
	return svc, repo
}
