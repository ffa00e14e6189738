package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinrec/clinrec/internal/config"
	"github.com/clinrec/clinrec/internal/domain/account"
	"github.com/clinrec/clinrec/internal/domain/patient"
	"github.com/clinrec/clinrec/internal/platform/auth"
)

var (
	seedFirstNames = []string{
		"João", "Maria", "Pedro", "Ana", "Carlos", "Juliana", "Lucas", "Fernanda",
		"Rafael", "Camila", "Bruno", "Larissa", "Gustavo", "Beatriz", "Felipe",
		"Mariana", "Rodrigo", "Patrícia", "Thiago", "Aline",
	}
	seedLastNames = []string{
		"Silva", "Santos", "Oliveira", "Souza", "Costa", "Pereira", "Almeida",
		"Ferreira", "Rodrigues", "Lima", "Gomes", "Ribeiro", "Martins", "Carvalho",
	}
	seedConditions = []string{
		"Diabetes Tipo 2", "Diabetes Tipo 1", "Hipertensão", "Asma", "Artrite",
		"Depressão", "Ansiedade", "Obesidade", "Hipotireoidismo", "Enxaqueca",
	}
	seedMedications = []string{
		"Metformina", "Insulina", "Losartana", "Salbutamol", "Ibuprofeno",
		"Sertralina", "Levotiroxina", "Omeprazol", "Dipirona", "Atenolol",
	}
	seedAllergies = []string{
		"Penicilina", "Dipirona", "Amendoim", "Camarão", "Látex", "Pólen",
	}
	seedCities = []struct {
		city  string
		state string
	}{
		{"São Paulo", "SP"}, {"Rio de Janeiro", "RJ"}, {"Belo Horizonte", "MG"},
		{"Curitiba", "PR"}, {"Porto Alegre", "RS"}, {"Salvador", "BA"},
		{"Recife", "PE"}, {"Fortaleza", "CE"},
	}
)

// runSeed registers a demo account and generates count demo patients with
// plausible Brazilian names, conditions and addresses. Safe to rerun:
// duplicate CPFs and the existing account are skipped.
func runSeed(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, count int) error {
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	accountSvc := account.NewService(account.NewRepoPG(pool), tokens)

	fullName := "Demo Admin"
	_, err := accountSvc.Register(ctx, account.RegisterParams{
		Username: "admin",
		Email:    "admin@clinrec.local",
		Password: "admin123",
		FullName: &fullName,
	})
	switch {
	case err == nil:
		fmt.Println("Created demo account: admin / admin123")
	case errors.Is(err, account.ErrUsernameTaken):
		fmt.Println("Demo account already exists, skipping")
	default:
		return err
	}

	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	rng := rand.New(rand.NewSource(42))

	created := 0
	for i := 0; i < count; i++ {
		params := randomPatient(rng)
		_, err := patientSvc.Create(ctx, params, "seed")
		if errors.Is(err, patient.ErrDuplicateCPF) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seeding patient %q: %w", params.Name, err)
		}
		created++
	}
	fmt.Printf("Seeded %d patient(s).\n", created)
	return nil
}

func randomPatient(rng *rand.Rand) patient.CreateParams {
	first := seedFirstNames[rng.Intn(len(seedFirstNames))]
	last := seedLastNames[rng.Intn(len(seedLastNames))]
	loc := seedCities[rng.Intn(len(seedCities))]

	year := 1940 + rng.Intn(70)
	month := 1 + rng.Intn(12)
	day := 1 + rng.Intn(28)

	gender := patient.GenderMale
	if rng.Intn(2) == 0 {
		gender = patient.GenderFemale
	}

	email := fmt.Sprintf("%s.%s%d@example.com", asciiLower(first), asciiLower(last), rng.Intn(1000))
	phone := fmt.Sprintf("11%09d", rng.Intn(1_000_000_000))

	return patient.CreateParams{
		Name:      first + " " + last,
		CPF:       randomCPF(rng),
		BirthDate: fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		Gender:    gender,
		Email:     &email,
		Phone:     &phone,
		Address: &patient.Address{
			Street:  "Rua " + seedLastNames[rng.Intn(len(seedLastNames))],
			Number:  fmt.Sprintf("%d", 1+rng.Intn(2000)),
			City:    loc.city,
			State:   loc.state,
			ZipCode: fmt.Sprintf("%08d", rng.Intn(100_000_000)),
		},
		MedicalConditions: pickSome(rng, seedConditions, 3),
		Medications:       pickSome(rng, seedMedications, 3),
		Allergies:         pickSome(rng, seedAllergies, 2),
	}
}

func randomCPF(rng *rand.Rand) string {
	digits := make([]byte, 11)
	for i := range digits {
		digits[i] = byte('0' + rng.Intn(10))
	}
	// All-same-digit CPFs are rejected by validation.
	if allSame(digits) {
		digits[10] = byte('0' + (int(digits[10]-'0')+1)%10)
	}
	return string(digits)
}

func allSame(b []byte) bool {
	for i := 1; i < len(b); i++ {
		if b[i] != b[0] {
			return false
		}
	}
	return true
}

func pickSome(rng *rand.Rand, options []string, max int) []string {
	n := rng.Intn(max + 1)
	if n == 0 {
		return []string{}
	}
	picked := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		v := options[rng.Intn(len(options))]
		if _, dup := picked[v]; dup {
			continue
		}
		picked[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// asciiLower folds the accented characters used in the seed names.
func asciiLower(s string) string {
	replacements := map[rune]rune{
		'á': 'a', 'â': 'a', 'ã': 'a', 'é': 'e', 'ê': 'e', 'í': 'i',
		'ó': 'o', 'ô': 'o', 'õ': 'o', 'ú': 'u', 'ç': 'c',
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if folded, ok := replacements[r]; ok {
			r = folded
		}
		out = append(out, r)
	}
	return string(out)
}
