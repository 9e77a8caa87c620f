package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brickmart/booking-api/internal/model"
	apperrors "github.com/brickmart/booking-api/pkg/errors"
)

func (r *slotTemplateRepository) Create(ctx context.Context, tpl *model.SlotTemplate) error {
	query := `
		INSERT INTO slot_templates (
			id, day_of_week, start_time, end_time, capacity, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	tpl.ID = uuid.New()
	tpl.Active = true
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		tpl.ID,
		tpl.DayOfWeek,
		tpl.StartTime,
		tpl.EndTime,
		tpl.Capacity,
		tpl.Active,
		tpl.CreatedAt,
		tpl.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to create slot template: %w", err))
	}
	return nil
}

func (r *slotTemplateRepository) Get(ctx context.Context, id uuid.UUID) (*model.SlotTemplate, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, capacity, active,
			   created_at, updated_at
		FROM slot_templates
		WHERE id = $1
	`
	var tpl model.SlotTemplate
	err := r.db.GetContext(ctx, &tpl, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("slot template", err)
	}
	if err != nil {
		return nil, apperrors.NewStorage(fmt.Errorf("failed to get slot template: %w", err))
	}
	return &tpl, nil
}

func (r *slotTemplateRepository) Update(ctx context.Context, tpl *model.SlotTemplate) error {
	query := `
		UPDATE slot_templates
		SET start_time = $1, end_time = $2, capacity = $3, active = $4, updated_at = $5
		WHERE id = $6
	`
	tpl.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		tpl.StartTime,
		tpl.EndTime,
		tpl.Capacity,
		tpl.Active,
		tpl.UpdatedAt,
		tpl.ID,
	)
	if err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to update slot template: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NewNotFound("slot template", nil)
	}
	return nil
}

// Deactivate removes the template from future availability without
// touching bookings already placed against its windows.
func (r *slotTemplateRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE slot_templates
		SET active = false, updated_at = $1
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to deactivate slot template: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorage(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NewNotFound("slot template", nil)
	}
	return nil
}

func (r *slotTemplateRepository) List(ctx context.Context) ([]*model.SlotTemplate, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, capacity, active,
			   created_at, updated_at
		FROM slot_templates
		ORDER BY day_of_week ASC, start_time ASC
	`
	var templates []*model.SlotTemplate
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, apperrors.NewStorage(fmt.Errorf("failed to list slot templates: %w", err))
	}
	return templates, nil
}

func (r *slotTemplateRepository) ListActiveForDayOfWeek(ctx context.Context, dayOfWeek int) ([]*model.SlotTemplate, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, capacity, active,
			   created_at, updated_at
		FROM slot_templates
		WHERE day_of_week = $1 AND active
		ORDER BY start_time ASC
	`
	var templates []*model.SlotTemplate
	if err := r.db.SelectContext(ctx, &templates, query, dayOfWeek); err != nil {
		return nil, apperrors.NewStorage(fmt.Errorf("failed to list active slot templates: %w", err))
	}
	return templates, nil
}
