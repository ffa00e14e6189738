package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, name, cpf, birth_date, gender, email, phone, address,
	medical_conditions, medications, allergies, emergency_contact, insurance_info,
	notes, created_by, created_at, updated_at`

func scanRow(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.CPF, &p.BirthDate, &p.Gender, &p.Email, &p.Phone,
		&p.Address, &p.MedicalConditions, &p.Medications, &p.Allergies,
		&p.EmergencyContact, &p.InsuranceInfo, &p.Notes, &p.CreatedBy,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, cpf, birth_date, gender, email, phone, address,
			medical_conditions, medications, allergies, emergency_contact, insurance_info,
			notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, p.Name, p.CPF, p.BirthDate, p.Gender, p.Email, p.Phone, p.Address,
		p.MedicalConditions, p.Medications, p.Allergies, p.EmergencyContact,
		p.InsuranceInfo, p.Notes, p.CreatedBy)
	if isUniqueViolation(err) {
		return ErrDuplicateCPF
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanRow(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByCPF(ctx context.Context, cpf string) (*Patient, error) {
	return scanRow(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE cpf = $1`, cpf))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET name=$2, cpf=$3, birth_date=$4, gender=$5, email=$6, phone=$7,
			address=$8, medical_conditions=$9, medications=$10, allergies=$11,
			emergency_contact=$12, insurance_info=$13, notes=$14, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.CPF, p.BirthDate, p.Gender, p.Email, p.Phone,
		p.Address, p.MedicalConditions, p.Medications, p.Allergies,
		p.EmergencyContact, p.InsuranceInfo, p.Notes)
	if isUniqueViolation(err) {
		return ErrDuplicateCPF
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*Patient, error) {
	var items []*Patient
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
