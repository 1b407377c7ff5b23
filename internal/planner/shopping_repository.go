package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ShoppingList is a persisted shopping list for one plan.
type ShoppingList struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	PlanID    int64     `json:"plan_id"`
	Items     []string  `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingRepository handles persistence of shopping lists.
type ShoppingRepository struct {
	db *sql.DB
}

// NewShoppingRepository creates a new shopping list repository.
func NewShoppingRepository(db *sql.DB) *ShoppingRepository {
	return &ShoppingRepository{db: db}
}

// Save creates a new shopping list row and returns its id.
func (r *ShoppingRepository) Save(ctx context.Context, list *ShoppingList) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (user_id, plan_id, items, created_at) VALUES (?, ?, ?, ?)`,
		list.UserID, list.PlanID, string(itemsJSON), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list: %w", err)
	}
	return res.LastInsertId()
}

// GetByPlanID retrieves the shopping list for a plan, or nil when absent.
func (r *ShoppingRepository) GetByPlanID(ctx context.Context, planID int64) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, plan_id, items, created_at FROM shopping_lists
		 WHERE plan_id = ? ORDER BY created_at DESC LIMIT 1`, planID)

	var list ShoppingList
	var itemsJSON string
	if err := row.Scan(&list.ID, &list.UserID, &list.PlanID, &itemsJSON, &list.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list for plan %d: %w", planID, err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	return &list, nil
}
