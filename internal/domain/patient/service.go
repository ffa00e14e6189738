package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var nonDigits = regexp.MustCompile(`\D`)

var validGenders = map[string]bool{
	GenderMale: true, GenderFemale: true, GenderOther: true,
}

// CreateParams carries the fields accepted when registering a patient.
type CreateParams struct {
	Name              string            `json:"name"`
	CPF               string            `json:"cpf"`
	BirthDate         string            `json:"birth_date"`
	Gender            string            `json:"gender"`
	Email             *string           `json:"email"`
	Phone             *string           `json:"phone"`
	Address           *Address          `json:"address"`
	MedicalConditions []string          `json:"medical_conditions"`
	Medications       []string          `json:"medications"`
	Allergies         []string          `json:"allergies"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact"`
	InsuranceInfo     *InsuranceInfo    `json:"insurance_info"`
	Notes             *string           `json:"notes"`
}

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Name              *string           `json:"name"`
	BirthDate         *string           `json:"birth_date"`
	Gender            *string           `json:"gender"`
	Email             *string           `json:"email"`
	Phone             *string           `json:"phone"`
	Address           *Address          `json:"address"`
	MedicalConditions []string          `json:"medical_conditions"`
	Medications       []string          `json:"medications"`
	Allergies         []string          `json:"allergies"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact"`
	InsuranceInfo     *InsuranceInfo    `json:"insurance_info"`
	Notes             *string           `json:"notes"`
}

// NormalizeCPF strips non-digit characters and validates the result: exactly
// 11 digits, not all the same digit.
func NormalizeCPF(raw string) (string, error) {
	cpf := nonDigits.ReplaceAllString(raw, "")
	if len(cpf) != 11 {
		return "", fmt.Errorf("cpf must have 11 digits")
	}
	if cpf == strings.Repeat(cpf[:1], 11) {
		return "", fmt.Errorf("invalid cpf")
	}
	return cpf, nil
}

// NormalizePhone strips non-digit characters and validates the length.
func NormalizePhone(raw string) (string, error) {
	phone := nonDigits.ReplaceAllString(raw, "")
	if len(phone) < 10 || len(phone) > 11 {
		return "", fmt.Errorf("phone must have 10 or 11 digits")
	}
	return phone, nil
}

func validateName(name string) error {
	if len(name) < 3 || len(name) > 200 {
		return fmt.Errorf("name must be between 3 and 200 characters")
	}
	return nil
}

func validateAddress(a *Address) error {
	if a == nil {
		return nil
	}
	zip := strings.ReplaceAll(a.ZipCode, "-", "")
	if len(zip) != 8 || nonDigits.MatchString(zip) {
		return fmt.Errorf("invalid zip code")
	}
	a.ZipCode = zip
	return nil
}

func parseBirthDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("birth_date must be an ISO date (YYYY-MM-DD)")
	}
	return t, nil
}

// Create validates and stores a new patient record.
func (s *Service) Create(ctx context.Context, params CreateParams, createdBy string) (*Patient, error) {
	if err := validateName(params.Name); err != nil {
		return nil, err
	}
	cpf, err := NormalizeCPF(params.CPF)
	if err != nil {
		return nil, err
	}
	birth, err := parseBirthDate(params.BirthDate)
	if err != nil {
		return nil, err
	}
	gender := strings.ToUpper(params.Gender)
	if !validGenders[gender] {
		return nil, fmt.Errorf("gender must be one of M, F, O")
	}
	if params.Phone != nil && *params.Phone != "" {
		phone, err := NormalizePhone(*params.Phone)
		if err != nil {
			return nil, err
		}
		params.Phone = &phone
	}
	if err := validateAddress(params.Address); err != nil {
		return nil, err
	}

	p := &Patient{
		Name:              params.Name,
		CPF:               cpf,
		BirthDate:         birth,
		Gender:            gender,
		Email:             params.Email,
		Phone:             params.Phone,
		Address:           params.Address,
		MedicalConditions: params.MedicalConditions,
		Medications:       params.Medications,
		Allergies:         params.Allergies,
		EmergencyContact:  params.EmergencyContact,
		InsuranceInfo:     params.InsuranceInfo,
		Notes:             params.Notes,
	}
	if createdBy != "" {
		p.CreatedBy = &createdBy
	}
	p.Normalize()

	if _, err := s.repo.GetByCPF(ctx, cpf); err == nil {
		return nil, ErrDuplicateCPF
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
		p.UpdatedAt = p.CreatedAt
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies a partial update to an existing record.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if err := validateName(*params.Name); err != nil {
			return nil, err
		}
		p.Name = *params.Name
	}
	if params.BirthDate != nil {
		birth, err := parseBirthDate(*params.BirthDate)
		if err != nil {
			return nil, err
		}
		p.BirthDate = birth
	}
	if params.Gender != nil {
		gender := strings.ToUpper(*params.Gender)
		if !validGenders[gender] {
			return nil, fmt.Errorf("gender must be one of M, F, O")
		}
		p.Gender = gender
	}
	if params.Email != nil {
		p.Email = params.Email
	}
	if params.Phone != nil {
		if *params.Phone != "" {
			phone, err := NormalizePhone(*params.Phone)
			if err != nil {
				return nil, err
			}
			p.Phone = &phone
		} else {
			p.Phone = nil
		}
	}
	if params.Address != nil {
		if err := validateAddress(params.Address); err != nil {
			return nil, err
		}
		p.Address = params.Address
	}
	if params.MedicalConditions != nil {
		p.MedicalConditions = params.MedicalConditions
	}
	if params.Medications != nil {
		p.Medications = params.Medications
	}
	if params.Allergies != nil {
		p.Allergies = params.Allergies
	}
	if params.EmergencyContact != nil {
		p.EmergencyContact = params.EmergencyContact
	}
	if params.InsuranceInfo != nil {
		p.InsuranceInfo = params.InsuranceInfo
	}
	if params.Notes != nil {
		p.Notes = params.Notes
	}

	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Message      string   `json:"message"`
	Imported     int      `json:"imported"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details"`
}

// syntheaBundle is the wrapper shape of Synthea FHIR exports.
type syntheaBundle struct {
	Entry []syntheaEntry `json:"entry"`
}

type syntheaEntry struct {
	Resource *syntheaResource `json:"resource"`
	// Custom-format entries are full create payloads.
	CreateParams
}

type syntheaResource struct {
	ID         string `json:"id"`
	BirthDate  string `json:"birthDate"`
	Gender     string `json:"gender"`
	Name       []struct {
		Given  []string `json:"given"`
		Family string   `json:"family"`
	} `json:"name"`
	Identifier []struct {
		Value string `json:"value"`
	} `json:"identifier"`
	Telecom []struct {
		Value string `json:"value"`
	} `json:"telecom"`
}

// Import loads patients from a JSON payload. The payload is either a plain
// array of create payloads or a Synthea-style bundle with an "entry" list.
// Records with errors or duplicate CPFs are skipped and reported.
func (s *Service) Import(ctx context.Context, data []byte, createdBy string) (*ImportResult, error) {
	var items []syntheaEntry

	var bundle syntheaBundle
	if err := json.Unmarshal(data, &bundle); err == nil && bundle.Entry != nil {
		items = bundle.Entry
	} else {
		var plain []syntheaEntry
		if err := json.Unmarshal(data, &plain); err != nil {
			return nil, fmt.Errorf("invalid JSON format")
		}
		items = plain
	}

	result := &ImportResult{Message: "Import completed", ErrorDetails: []string{}}
	for _, item := range items {
		params := item.CreateParams
		if item.Resource != nil {
			params = item.Resource.toCreateParams()
		}

		if _, err := s.Create(ctx, params, createdBy); err != nil {
			if err == ErrDuplicateCPF {
				continue
			}
			result.Errors++
			if len(result.ErrorDetails) < 10 {
				result.ErrorDetails = append(result.ErrorDetails, err.Error())
			}
			continue
		}
		result.Imported++
	}

	return result, nil
}

func (r *syntheaResource) toCreateParams() CreateParams {
	params := CreateParams{
		BirthDate: r.BirthDate,
		Gender:    GenderOther,
	}
	if r.Gender != "" {
		params.Gender = strings.ToUpper(r.Gender[:1])
	}
	if len(r.Name) > 0 {
		given := ""
		if len(r.Name[0].Given) > 0 {
			given = r.Name[0].Given[0]
		}
		params.Name = strings.TrimSpace(given + " " + r.Name[0].Family)
	}
	if len(r.Identifier) > 0 {
		params.CPF = r.Identifier[0].Value
	} else {
		params.CPF = nonDigits.ReplaceAllString(uuid.New().String(), "")[:11]
	}
	if len(r.Telecom) > 0 {
		phone := r.Telecom[0].Value
		params.Phone = &phone
	}
	email := r.ID + "@example.com"
	params.Email = &email
	return params
}

// Stats is the aggregate summary over all patient records.
type Stats struct {
	TotalPatients      int            `json:"total_patients"`
	AgeDistribution    map[string]int `json:"age_distribution"`
	GenderDistribution map[string]int `json:"gender_distribution"`
	TopConditions      map[string]int `json:"top_conditions"`
	AverageAge         float64        `json:"average_age"`
}

// StatsSummary aggregates age buckets, gender split and the ten most common
// conditions across the whole store.
func (s *Service) StatsSummary(ctx context.Context) (*Stats, error) {
	patients, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalPatients:      len(patients),
		AgeDistribution:    map[string]int{},
		GenderDistribution: map[string]int{},
		TopConditions:      map[string]int{},
	}
	if len(patients) == 0 {
		return stats, nil
	}

	today := time.Now()
	ageSum := 0
	conditionCounts := map[string]int{}
	for _, p := range patients {
		age := Age(p.BirthDate, today)
		ageSum += age
		stats.AgeDistribution[ageBucket(age)]++
		stats.GenderDistribution[p.Gender]++
		for _, c := range p.MedicalConditions {
			conditionCounts[c]++
		}
	}
	stats.AverageAge = float64(ageSum) / float64(len(patients))
	stats.TopConditions = topN(conditionCounts, 10)

	return stats, nil
}

func ageBucket(age int) string {
	switch {
	case age <= 18:
		return "0-18"
	case age <= 30:
		return "19-30"
	case age <= 50:
		return "31-50"
	case age <= 70:
		return "51-70"
	default:
		return "70+"
	}
}

func topN(counts map[string]int, n int) map[string]int {
	type kv struct {
		key   string
		count int
	}
	sorted := make([]kv, 0, len(counts))
	for k, v := range counts {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	top := make(map[string]int, len(sorted))
	for _, e := range sorted {
		top[e.key] = e.count
	}
	return top
}
