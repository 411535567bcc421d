package service

import (
	"errors"
	"fmt"

	"github.com/inkwell-cms/inkwell-backend/internal/common"
	"github.com/inkwell-cms/inkwell-backend/internal/domain"
	"github.com/inkwell-cms/inkwell-backend/internal/repository"
	"github.com/inkwell-cms/inkwell-backend/pkg/locale"
	"github.com/inkwell-cms/inkwell-backend/pkg/logger"
)

// ResolvedContent is the composed result of a slug lookup. Exactly one of
// Post/Category is set, matching EntityType. ResolvedLocale may differ from
// RequestedLocale after fallback; callers must surface that instead of
// silently mixing locales.
type ResolvedContent struct {
	EntityType      string
	Post            *domain.Post
	Category        *domain.Category
	Translation     *domain.Translation
	RequestedLocale locale.Locale
	ResolvedLocale  locale.Locale
}

// EntityID returns the id of the resolved entity.
func (rc *ResolvedContent) EntityID() uint64 {
	if rc.Post != nil {
		return rc.Post.ID
	}
	if rc.Category != nil {
		return rc.Category.ID
	}
	return 0
}

// ResolverService resolves (entityType, locale, slug) triples into content
// views with deterministic locale fallback.
type ResolverService struct {
	slugRepo        repository.SlugRepository
	translationRepo repository.TranslationRepository
	postRepo        repository.PostRepository
	categoryRepo    repository.CategoryRepository
	locales         *locale.Set
}

// NewResolverService creates a ResolverService
func NewResolverService(
	slugRepo repository.SlugRepository,
	translationRepo repository.TranslationRepository,
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	locales *locale.Set,
) *ResolverService {
	return &ResolverService{
		slugRepo:        slugRepo,
		translationRepo: translationRepo,
		postRepo:        postRepo,
		categoryRepo:    categoryRepo,
		locales:         locales,
	}
}

// Resolve is the public resolution path: soft-deleted and unpublished
// entities are not found, regardless of caller. Historical (inactive) slugs
// still resolve; there is no cross-locale slug fallback.
func (s *ResolverService) Resolve(entityType string, loc locale.Locale, slugStr string) (*ResolvedContent, error) {
	return s.resolve(entityType, loc, slugStr, false)
}

// ResolveAdmin bypasses the published and soft-delete checks. Privileged
// callers opt in explicitly; nothing else differs from Resolve.
func (s *ResolverService) ResolveAdmin(entityType string, loc locale.Locale, slugStr string) (*ResolvedContent, error) {
	return s.resolve(entityType, loc, slugStr, true)
}

func (s *ResolverService) resolve(entityType string, loc locale.Locale, slugStr string, privileged bool) (*ResolvedContent, error) {
	entityID, err := s.slugRepo.ResolveEntity(entityType, string(loc), slugStr)
	if err != nil {
		return nil, err
	}

	result := &ResolvedContent{
		EntityType:      entityType,
		RequestedLocale: loc,
	}

	switch entityType {
	case domain.EntityTypePost:
		var post *domain.Post
		if privileged {
			post, err = s.postRepo.FindByIDUnscoped(entityID)
		} else {
			post, err = s.postRepo.FindByID(entityID)
		}
		if err != nil {
			return nil, err
		}
		if !privileged && !post.Published {
			return nil, common.ErrNotFound
		}
		result.Post = post
	case domain.EntityTypeCategory:
		var category *domain.Category
		if privileged {
			category, err = s.categoryRepo.FindByIDUnscoped(entityID)
		} else {
			category, err = s.categoryRepo.FindByID(entityID)
		}
		if err != nil {
			return nil, err
		}
		if !privileged && !category.Published {
			return nil, common.ErrNotFound
		}
		result.Category = category
	default:
		return nil, fmt.Errorf("%w: unknown entity type %q", common.ErrInvalidInput, entityType)
	}

	translations, err := s.translationRepo.FindAllByEntity(entityType, entityID)
	if err != nil {
		return nil, err
	}
	if len(translations) == 0 {
		// An entity without translations means a prior write was lost or
		// partial. Surfaced as CorruptState, not NotFound, so monitoring
		// can tell it apart from an ordinary 404.
		l := logger.WithEntity(entityType, entityID)
		l.Error().Str("slug", slugStr).Str("locale", string(loc)).
			Msg("entity has no translations")
		return nil, common.ErrCorruptState
	}

	chosen := s.pickTranslation(translations, loc)
	result.Translation = chosen
	result.ResolvedLocale = locale.Locale(chosen.Locale)
	return result, nil
}

// pickTranslation prefers the active translation of the requested locale.
// Otherwise the fallback order is: active rows first, then the configured
// default locale, then lowest id, so repeated calls always pick the same
// row.
func (s *ResolverService) pickTranslation(translations []*domain.Translation, loc locale.Locale) *domain.Translation {
	for _, t := range translations {
		if t.Locale == string(loc) && t.Active {
			return t
		}
	}

	def := string(s.locales.Default())
	best := translations[0]
	for _, t := range translations[1:] {
		if translationLess(t, best, def) {
			best = t
		}
	}
	return best
}

// translationLess reports whether a ranks before b in fallback order.
func translationLess(a, b *domain.Translation, defaultLocale string) bool {
	if a.Active != b.Active {
		return a.Active
	}
	aDef := a.Locale == defaultLocale
	bDef := b.Locale == defaultLocale
	if aDef != bDef {
		return aDef
	}
	return a.ID < b.ID
}

// RecordView increments a post's view counter. Called explicitly by the
// public read path after a successful Resolve; never fired implicitly on
// fetch, so admin and internal reads do not inflate counts.
func (s *ResolverService) RecordView(entityType string, entityID uint64) error {
	if entityType != domain.EntityTypePost {
		return nil
	}
	if err := s.postRepo.IncrementViewCount(entityID); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is the ordinary 404 case, which callers
// should not log as an error.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
