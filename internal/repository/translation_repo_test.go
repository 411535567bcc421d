package repository

import (
	"errors"
	"testing"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
)

func TestTranslationUpsertCreatesAndUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)

	created, err := repo.Upsert(domain.EntityTypePost, 1, "en", TranslationFields{
		Title: "First",
		Body:  "body",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if !created.Active {
		t.Error("new translation should be active")
	}

	updated, err := repo.Upsert(domain.EntityTypePost, 1, "en", TranslationFields{
		Title: "Second",
		Body:  "body v2",
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("upsert created a new row: %d vs %d", updated.ID, created.ID)
	}
	if updated.Title != "Second" {
		t.Errorf("title = %q, want Second", updated.Title)
	}

	var count int64
	db.Model(&domain.Translation{}).Count(&count)
	if count != 1 {
		t.Errorf("translation rows = %d, want 1 per (entity, locale)", count)
	}
}

func TestTranslationFindMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)

	_, err := repo.Find(domain.EntityTypePost, 1, "en")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTranslationFindAllOrderedByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)

	for _, loc := range []string{"ru", "en", "lt"} {
		if _, err := repo.Upsert(domain.EntityTypePost, 1, loc, TranslationFields{Title: loc}); err != nil {
			t.Fatalf("upsert %s failed: %v", loc, err)
		}
	}

	rows, err := repo.FindAllByEntity(domain.EntityTypePost, 1)
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	// Insertion order, ascending by id: deterministic fallback input.
	want := []string{"ru", "en", "lt"}
	for i, row := range rows {
		if string(row.Locale) != want[i] {
			t.Errorf("rows[%d].Locale = %s, want %s", i, row.Locale, want[i])
		}
	}
}

func TestTranslationDeactivate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTranslationRepository(db)

	if _, err := repo.Upsert(domain.EntityTypePost, 1, "en", TranslationFields{Title: "x"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := repo.Deactivate(domain.EntityTypePost, 1, "en"); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	row, err := repo.Find(domain.EntityTypePost, 1, "en")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if row.Active {
		t.Error("translation should be inactive")
	}

	// Upsert reactivates the same row.
	revived, err := repo.Upsert(domain.EntityTypePost, 1, "en", TranslationFields{Title: "y"})
	if err != nil {
		t.Fatalf("reactivating upsert failed: %v", err)
	}
	if !revived.Active {
		t.Error("upsert should reactivate the translation")
	}
}
