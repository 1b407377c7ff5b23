package telegram

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"family-meal-planner/internal/database"
	"family-meal-planner/internal/family"
)

func TestSessionRepository(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewSessionRepository(db.SQL)
	ctx := context.Background()
	now := time.Now()

	t.Run("NoActiveSession", func(t *testing.T) {
		s, err := repo.GetActive(ctx, "42", now)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if s != nil {
			t.Fatal("Expected nil for a user without sessions")
		}
	})

	t.Run("CreateAndRoundTrip", func(t *testing.T) {
		data := &WizardData{
			Members: []family.Member{{ID: "m1", Role: family.RoleSelf}},
			Habits:  family.Habits{TimeLimitMinutes: 30},
		}
		id, err := repo.Create(ctx, "42", StateAllergies, data, time.Hour)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		s, err := repo.GetActive(ctx, "42", now)
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if s == nil || s.ID != id || s.State != StateAllergies {
			t.Fatalf("Unexpected session %+v", s)
		}

		loaded, err := s.Data()
		if err != nil {
			t.Fatalf("Failed to decode session data: %v", err)
		}
		if len(loaded.Members) != 1 || loaded.Members[0].Role != family.RoleSelf {
			t.Errorf("Wizard data did not round-trip: %+v", loaded)
		}
	})

	t.Run("UpdateAdvancesState", func(t *testing.T) {
		s, _ := repo.GetActive(ctx, "42", now)
		data, _ := s.Data()
		data.Constraints.Allergies = []string{"花生"}

		if err := repo.Update(ctx, s.ID, StateDislikes, data); err != nil {
			t.Fatalf("Failed to update session: %v", err)
		}

		s, err := repo.GetActive(ctx, "42", now)
		if err != nil {
			t.Fatalf("Failed to reload session: %v", err)
		}
		if s.State != StateDislikes {
			t.Errorf("Expected state %s, got %s", StateDislikes, s.State)
		}
		loaded, _ := s.Data()
		if len(loaded.Constraints.Allergies) != 1 {
			t.Errorf("Updated data did not persist: %+v", loaded)
		}
	})

	t.Run("ExpiredSessionsInvisible", func(t *testing.T) {
		if _, err := repo.Create(ctx, "77", StateRole, &WizardData{}, -time.Minute); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		s, err := repo.GetActive(ctx, "77", now)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if s != nil {
			t.Error("Expired sessions must not be returned")
		}
	})

	t.Run("CleanupExpired", func(t *testing.T) {
		if err := repo.CleanupExpired(ctx); err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		// The live session from earlier subtests must survive cleanup.
		s, err := repo.GetActive(ctx, "42", now)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if s == nil {
			t.Error("Cleanup removed a non-expired session")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s, _ := repo.GetActive(ctx, "42", now)
		if err := repo.Delete(ctx, s.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		s, _ = repo.GetActive(ctx, "42", now)
		if s != nil {
			t.Error("Deleted session still active")
		}
	})
}
