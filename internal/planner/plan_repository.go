package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// StoredPlan is a persisted plan row.
type StoredPlan struct {
	ID        int64
	UserID    string
	Plan      *PlanResult
	CreatedAt time.Time
}

// PlanRepository is a database-backed repository for generated plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Save inserts a new plan for a user and returns its row id.
func (r *PlanRepository) Save(ctx context.Context, userID string, plan *PlanResult) (int64, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal plan: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO plans (user_id, plan_data, created_at) VALUES (?, ?, ?)`,
		userID, data, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert plan for user %s: %w", userID, err)
	}
	return res.LastInsertId()
}

// Latest returns the most recent plan for a user, or nil when none exists.
func (r *PlanRepository) Latest(ctx context.Context, userID string) (*StoredPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, plan_data, created_at FROM plans
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, userID)

	var stored StoredPlan
	var data []byte
	if err := row.Scan(&stored.ID, &stored.UserID, &data, &stored.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest plan for user %s: %w", userID, err)
	}

	var plan PlanResult
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored plan %d: %w", stored.ID, err)
	}
	stored.Plan = &plan
	return &stored, nil
}

// AppendCollections merges supplementary collections into a stored plan and
// persists the result in place.
func (r *PlanRepository) AppendCollections(ctx context.Context, planID int64, collections []Collection) error {
	row := r.db.QueryRowContext(ctx, `SELECT plan_data FROM plans WHERE id = ?`, planID)

	var data []byte
	if err := row.Scan(&data); err != nil {
		return fmt.Errorf("failed to load plan %d: %w", planID, err)
	}

	var plan PlanResult
	if err := json.Unmarshal(data, &plan); err != nil {
		return fmt.Errorf("failed to unmarshal plan %d: %w", planID, err)
	}

	plan.Scenarios = append(plan.Scenarios, collections...)
	for _, c := range collections {
		plan.Recipes = append(plan.Recipes, c.Recipes...)
	}

	updated, err := json.Marshal(&plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan %d: %w", planID, err)
	}

	_, err = r.db.ExecContext(ctx, `UPDATE plans SET plan_data = ? WHERE id = ?`, updated, planID)
	if err != nil {
		return fmt.Errorf("failed to update plan %d: %w", planID, err)
	}
	return nil
}
