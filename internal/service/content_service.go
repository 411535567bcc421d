package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"github.com/inkwell-cms/inkwell-backend/internal/repository"
	"github.com/inkwell-cms/inkwell-backend/pkg/locale"
	"gorm.io/gorm"
)

// ContentService owns the write paths of the content engine. Every mutation
// runs inside one database transaction; every translation or slug mutation
// appends exactly one post-state revision before the transaction commits.
type ContentService struct {
	db      *gorm.DB
	locales *locale.Set
}

// NewContentService creates a ContentService
func NewContentService(db *gorm.DB, locales *locale.Set) *ContentService {
	return &ContentService{db: db, locales: locales}
}

// CreatePostInput carries the initial locale payload of a new post.
// At least one locale is required, so a post is never created without a
// translation.
type CreatePostInput struct {
	Locale      locale.Locale
	Title       string
	Description string
	Body        string
	Slug        string
	Published   bool
	Position    *int
}

// CreateCategoryInput mirrors CreatePostInput for categories.
type CreateCategoryInput struct {
	Locale      locale.Locale
	Title       string
	Description string
	Slug        string
	Published   bool
	ParentID    *uint64
	SortOrder   int
}

// revisionSnapshot is the payload stored in every revision: the full
// post-state of the entity's content. Revert re-applies it as a new write.
type revisionSnapshot struct {
	EntityType   string                `json:"entity_type"`
	EntityID     uint64                `json:"entity_id"`
	Published    bool                  `json:"published"`
	Translations []snapshotTranslation `json:"translations"`
	Slugs        []snapshotSlug        `json:"slugs"`
}

type snapshotTranslation struct {
	Locale      string `json:"locale"`
	Active      bool   `json:"active"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Body        string `json:"body"`
}

type snapshotSlug struct {
	Locale string `json:"locale"`
	Slug   string `json:"slug"`
	Active bool   `json:"active"`
}

// CreatePost creates the entity, its first translation, its first slug and
// the initial revision in one transaction.
func (s *ContentService) CreatePost(input CreatePostInput) (*domain.Post, error) {
	loc, err := s.checkLocaleAndTitle(input.Locale, input.Title)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{Published: input.Published, Position: input.Position}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewPostRepository(tx).Create(post); err != nil {
			return err
		}
		return s.writeContent(tx, domain.EntityTypePost, post.ID, loc, repository.TranslationFields{
			Title:       input.Title,
			Description: input.Description,
			Body:        input.Body,
		}, input.Slug)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// CreateCategory creates a category entity with its first translation, slug
// and revision in one transaction. The parent must exist.
func (s *ContentService) CreateCategory(input CreateCategoryInput) (*domain.Category, error) {
	loc, err := s.checkLocaleAndTitle(input.Locale, input.Title)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{
		Published: input.Published,
		ParentID:  input.ParentID,
		SortOrder: input.SortOrder,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepository(tx)
		if input.ParentID != nil {
			if _, err := categories.FindByID(*input.ParentID); err != nil {
				return fmt.Errorf("parent category: %w", err)
			}
		}
		if err := categories.Create(category); err != nil {
			return err
		}
		return s.writeContent(tx, domain.EntityTypeCategory, category.ID, loc, repository.TranslationFields{
			Title:       input.Title,
			Description: input.Description,
		}, input.Slug)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// writeContent performs the shared create sequence inside tx: translation,
// slug, revision.
func (s *ContentService) writeContent(tx *gorm.DB, entityType string, entityID uint64, loc locale.Locale, fields repository.TranslationFields, rawSlug string) error {
	if _, err := repository.NewTranslationRepository(tx).Upsert(entityType, entityID, string(loc), fields); err != nil {
		return err
	}
	if _, err := repository.NewSlugRepository(tx).Upsert(entityType, entityID, string(loc), rawSlug); err != nil {
		return err
	}
	return s.recordRevision(tx, entityType, entityID)
}

// UpsertTranslation updates or inserts the (entity, locale) translation and
// appends one revision, all in one transaction. Empty titles are rejected
// before anything is written.
func (s *ContentService) UpsertTranslation(entityType string, entityID uint64, loc locale.Locale, fields repository.TranslationFields) (*domain.Translation, error) {
	l, err := s.checkLocaleAndTitle(loc, fields.Title)
	if err != nil {
		return nil, err
	}
	if err := s.checkEntityExists(entityType, entityID); err != nil {
		return nil, err
	}

	var result *domain.Translation
	err = s.db.Transaction(func(tx *gorm.DB) error {
		t, err := repository.NewTranslationRepository(tx).Upsert(entityType, entityID, string(l), fields)
		if err != nil {
			return err
		}
		result = t
		return s.recordRevision(tx, entityType, entityID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertSlug makes rawSlug (normalized) the entity's active slug for the
// locale and appends one revision. The previous slug row stays behind
// inactive, so the old URL keeps resolving to the same entity.
func (s *ContentService) UpsertSlug(entityType string, entityID uint64, loc locale.Locale, rawSlug string) (*domain.Slug, error) {
	l := locale.Normalize(string(loc))
	if l == "" {
		return nil, fmt.Errorf("%w: empty locale", common.ErrInvalidInput)
	}
	if err := s.checkEntityExists(entityType, entityID); err != nil {
		return nil, err
	}

	var result *domain.Slug
	err := s.db.Transaction(func(tx *gorm.DB) error {
		row, err := repository.NewSlugRepository(tx).Upsert(entityType, entityID, string(l), rawSlug)
		if err != nil {
			return err
		}
		result = row
		return s.recordRevision(tx, entityType, entityID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListRevisions returns revision summaries newest first.
func (s *ContentService) ListRevisions(entityType string, entityID uint64, limit, offset int) ([]domain.RevisionSummary, error) {
	rows, err := repository.NewRevisionRepository(s.db).List(entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.RevisionSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, domain.RevisionSummary{ID: r.ID, CreatedAt: r.CreatedAt})
	}
	return summaries, nil
}

// GetRevision returns one full revision including its payload.
func (s *ContentService) GetRevision(id uint64) (*domain.Revision, error) {
	return repository.NewRevisionRepository(s.db).Find(id)
}

// Revert applies an old revision's payload as a new write. The revision log
// stays strictly append-only: reverting produces a new revision whose
// payload equals the old state, it never rewinds or mutates the log.
func (s *ContentService) Revert(entityType string, entityID uint64, revisionID uint64) error {
	rev, err := repository.NewRevisionRepository(s.db).Find(revisionID)
	if err != nil {
		return err
	}
	if rev.EntityType != entityType || rev.EntityID != entityID {
		return fmt.Errorf("%w: revision %d does not belong to %s/%d", common.ErrInvalidInput, revisionID, entityType, entityID)
	}

	var snap revisionSnapshot
	if err := json.Unmarshal(rev.Payload, &snap); err != nil {
		return fmt.Errorf("decode revision payload: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		translations := repository.NewTranslationRepository(tx)
		slugs := repository.NewSlugRepository(tx)

		restored := make(map[string]bool, len(snap.Translations))
		for _, t := range snap.Translations {
			if !t.Active {
				continue
			}
			if _, err := translations.Upsert(entityType, entityID, t.Locale, repository.TranslationFields{
				Title:       t.Title,
				Description: t.Description,
				Body:        t.Body,
			}); err != nil {
				return err
			}
			restored[t.Locale] = true
		}

		// Locales that exist now but were absent (or inactive) in the
		// snapshot are soft-disabled, not deleted.
		current, err := translations.FindAllByEntity(entityType, entityID)
		if err != nil {
			return err
		}
		for _, t := range current {
			if !restored[t.Locale] && t.Active {
				if err := translations.Deactivate(entityType, entityID, t.Locale); err != nil {
					return err
				}
			}
		}

		for _, sl := range snap.Slugs {
			if !sl.Active {
				continue
			}
			if _, err := slugs.Upsert(entityType, entityID, sl.Locale, sl.Slug); err != nil {
				return err
			}
		}

		return s.recordRevision(tx, entityType, entityID)
	})
}

// Publish flips the entity to the published state.
func (s *ContentService) Publish(entityType string, entityID uint64) error {
	return s.setPublished(entityType, entityID, true)
}

// Unpublish moves the entity back to draft.
func (s *ContentService) Unpublish(entityType string, entityID uint64) error {
	return s.setPublished(entityType, entityID, false)
}

func (s *ContentService) setPublished(entityType string, entityID uint64, published bool) error {
	switch entityType {
	case domain.EntityTypePost:
		posts := repository.NewPostRepository(s.db)
		post, err := posts.FindByID(entityID)
		if err != nil {
			return err
		}
		post.Published = published
		return posts.Update(post)
	case domain.EntityTypeCategory:
		categories := repository.NewCategoryRepository(s.db)
		category, err := categories.FindByID(entityID)
		if err != nil {
			return err
		}
		category.Published = published
		return categories.Update(category)
	default:
		return fmt.Errorf("%w: unknown entity type %q", common.ErrInvalidInput, entityType)
	}
}

// SoftDelete marks the entity deleted. Translations, slugs and revisions
// stay in place; resolution stops finding the entity on the public path.
func (s *ContentService) SoftDelete(entityType string, entityID uint64) error {
	switch entityType {
	case domain.EntityTypePost:
		return repository.NewPostRepository(s.db).SoftDelete(entityID)
	case domain.EntityTypeCategory:
		return repository.NewCategoryRepository(s.db).SoftDelete(entityID)
	default:
		return fmt.Errorf("%w: unknown entity type %q", common.ErrInvalidInput, entityType)
	}
}

// HardDelete permanently removes a soft-deleted entity and cascades its
// translations, slugs, revisions and taxonomy associations. Categories
// additionally require zero children and zero attached posts; both guards
// run before any row is touched.
func (s *ContentService) HardDelete(entityType string, entityID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		switch entityType {
		case domain.EntityTypePost:
			posts := repository.NewPostRepository(tx)
			post, err := posts.FindByIDUnscoped(entityID)
			if err != nil {
				return err
			}
			if !post.DeletedAt.Valid {
				return common.ErrNotSoftDeleted
			}
			if err := posts.HardDelete(entityID); err != nil {
				return err
			}
		case domain.EntityTypeCategory:
			categories := repository.NewCategoryRepository(tx)
			category, err := categories.FindByIDUnscoped(entityID)
			if err != nil {
				return err
			}
			if !category.DeletedAt.Valid {
				return common.ErrNotSoftDeleted
			}
			children, err := categories.CountChildren(entityID)
			if err != nil {
				return err
			}
			if children > 0 {
				return common.ErrHasChildren
			}
			var attached int64
			err = tx.Model(&domain.LegacyArticleCategory{}).
				Where("category_id = ?", entityID).Count(&attached).Error
			if err != nil {
				return err
			}
			if attached > 0 {
				return common.ErrHasAttachedContent
			}
			if err := categories.HardDelete(entityID); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown entity type %q", common.ErrInvalidInput, entityType)
		}

		if err := repository.NewTranslationRepository(tx).DeleteByEntity(entityType, entityID); err != nil {
			return err
		}
		if err := repository.NewSlugRepository(tx).DeleteByEntity(entityType, entityID); err != nil {
			return err
		}
		if err := repository.NewRevisionRepository(tx).DeleteByEntity(entityType, entityID); err != nil {
			return err
		}
		return repository.NewTaxonomyRepository(tx).DeleteAssociationsByEntity(entityType, entityID)
	})
}

// recordRevision appends the entity's post-state snapshot inside tx.
func (s *ContentService) recordRevision(tx *gorm.DB, entityType string, entityID uint64) error {
	snap := revisionSnapshot{EntityType: entityType, EntityID: entityID}

	switch entityType {
	case domain.EntityTypePost:
		post, err := repository.NewPostRepository(tx).FindByIDUnscoped(entityID)
		if err != nil {
			return err
		}
		snap.Published = post.Published
	case domain.EntityTypeCategory:
		category, err := repository.NewCategoryRepository(tx).FindByIDUnscoped(entityID)
		if err != nil {
			return err
		}
		snap.Published = category.Published
	}

	translations, err := repository.NewTranslationRepository(tx).FindAllByEntity(entityType, entityID)
	if err != nil {
		return err
	}
	for _, t := range translations {
		snap.Translations = append(snap.Translations, snapshotTranslation{
			Locale:      t.Locale,
			Active:      t.Active,
			Title:       t.Title,
			Description: t.Description,
			Body:        t.Body,
		})
	}

	slugs, err := repository.NewSlugRepository(tx).FindAllByEntity(entityType, entityID)
	if err != nil {
		return err
	}
	for _, sl := range slugs {
		snap.Slugs = append(snap.Slugs, snapshotSlug{
			Locale: sl.Locale,
			Slug:   sl.Slug,
			Active: sl.Active,
		})
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = repository.NewRevisionRepository(tx).Record(entityType, entityID, payload)
	return err
}

func (s *ContentService) checkLocaleAndTitle(loc locale.Locale, title string) (locale.Locale, error) {
	l := locale.Normalize(string(loc))
	if l == "" {
		return "", fmt.Errorf("%w: empty locale", common.ErrInvalidInput)
	}
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: empty title", common.ErrInvalidInput)
	}
	return l, nil
}

func (s *ContentService) checkEntityExists(entityType string, entityID uint64) error {
	switch entityType {
	case domain.EntityTypePost:
		_, err := repository.NewPostRepository(s.db).FindByID(entityID)
		return err
	case domain.EntityTypeCategory:
		_, err := repository.NewCategoryRepository(s.db).FindByID(entityID)
		return err
	default:
		return fmt.Errorf("%w: unknown entity type %q", common.ErrInvalidInput, entityType)
	}
}
