package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "shortlink/internal/errors"
	"shortlink/internal/models"
)

// LinkRepository defines data access for short-link records. The durable
// store is the source of truth for links and their click counters.
type LinkRepository interface {
	// Create inserts a new link. The alias uniqueness constraint makes the
	// insert atomic with respect to concurrent creators; a losing insert
	// surfaces as ErrAliasConflict.
	Create(ctx context.Context, link *models.Link) error

	// FindByAlias returns the link regardless of its active flag.
	// Used by analytics, which also covers deactivated links.
	FindByAlias(ctx context.Context, alias string) (*models.Link, error)

	// FindActiveByAlias returns the link only when it is active.
	// Used by the resolution path.
	FindActiveByAlias(ctx context.Context, alias string) (*models.Link, error)

	FindByTopic(ctx context.Context, topic string) ([]models.Link, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Link, error)
	FindAllActive(ctx context.Context) ([]models.Link, error)

	// IncrementClicks atomically adds one to the click counter.
	IncrementClicks(ctx context.Context, alias string) error

	// Deactivate clears the active flag. The link keeps serving from the
	// cache until its entry expires; that staleness window is accepted.
	Deactivate(ctx context.Context, alias string) error
}

// GormLinkRepository implements LinkRepository on top of GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

func (r *GormLinkRepository) Create(ctx context.Context, link *models.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAliasConflict
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

func (r *GormLinkRepository) FindByAlias(ctx context.Context, alias string) (*models.Link, error) {
	var link models.Link
	err := r.db.WithContext(ctx).Where("alias = ?", alias).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to find link %q: %w", alias, err)
	}
	return &link, nil
}

func (r *GormLinkRepository) FindActiveByAlias(ctx context.Context, alias string) (*models.Link, error) {
	var link models.Link
	err := r.db.WithContext(ctx).Where("alias = ? AND active = ?", alias, true).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to find active link %q: %w", alias, err)
	}
	return &link, nil
}

func (r *GormLinkRepository) FindByTopic(ctx context.Context, topic string) ([]models.Link, error) {
	var links []models.Link
	if err := r.db.WithContext(ctx).Where("topic = ?", topic).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to find links for topic %q: %w", topic, err)
	}
	return links, nil
}

func (r *GormLinkRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	var links []models.Link
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to find links for owner %q: %w", ownerID, err)
	}
	return links, nil
}

func (r *GormLinkRepository) FindAllActive(ctx context.Context) ([]models.Link, error) {
	var links []models.Link
	if err := r.db.WithContext(ctx).Where("active = ?", true).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to find active links: %w", err)
	}
	return links, nil
}

func (r *GormLinkRepository) IncrementClicks(ctx context.Context, alias string) error {
	// UpdateColumn skips the UpdatedAt hook: counter bumps are not
	// metadata changes.
	err := r.db.WithContext(ctx).Model(&models.Link{}).
		Where("alias = ?", alias).
		UpdateColumn("clicks", gorm.Expr("clicks + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment clicks for %q: %w", alias, err)
	}
	return nil
}

func (r *GormLinkRepository) Deactivate(ctx context.Context, alias string) error {
	result := r.db.WithContext(ctx).Model(&models.Link{}).
		Where("alias = ?", alias).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate %q: %w", alias, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLinkNotFound
	}
	return nil
}

// isUniqueViolation detects a duplicate-alias insert. GORM translates the
// driver error when opened with TranslateError; the string check covers
// sqlite drivers that predate the translation.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
