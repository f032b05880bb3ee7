package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

type labRepository struct {
	db *sqlx.DB
}

func NewLabRepository(db *sqlx.DB) repository.LabRepository {
	return &labRepository{db: db}
}

func (r *labRepository) Identity(ctx context.Context) (*model.LabIdentity, error) {
	query := `
		SELECT lab_name, COALESCE(address, '') AS address, COALESCE(phone_no, '') AS phone_no, pad_logo
		FROM lab_info
		ORDER BY id
		LIMIT 1`

	var lab model.LabIdentity
	if err := r.db.GetContext(ctx, &lab, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("lab info", err)
		}
		return nil, fmt.Errorf("failed to get lab info: %w", err)
	}
	return &lab, nil
}

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, `SELECT doctor_id, doctor_name FROM doctors WHERE doctor_id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, `SELECT doctor_id, doctor_name FROM doctors ORDER BY doctor_name`); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
