package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sceneyard/sceneyard/internal/cache"
	"github.com/sceneyard/sceneyard/internal/database"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/repository"
	"github.com/sceneyard/sceneyard/pkg/logger"
)

var ErrDownloadAssetMissing = errors.New("template has no download asset")

// StreamPath is where recorded downloads point clients; the handler behind
// it streams the object out of storage.
const StreamPath = "/api/storage/stream"

type ToggleLikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

type DownloadResult struct {
	AlreadyDownloaded bool   `json:"alreadyDownloaded"`
	URL               string `json:"url"`
}

type DownloadHistoryEntry struct {
	Download models.Download `json:"download"`
	Template models.Template `json:"template"`
}

// EngagementService owns like toggling and download recording. Both are
// read-modify-write sequences, so each runs inside a single transaction.
type EngagementService struct {
	db         *gorm.DB
	likeCounts cache.LikeCounter
}

func NewEngagementService(db *gorm.DB, likeCounts cache.LikeCounter) *EngagementService {
	return &EngagementService{
		db:         db,
		likeCounts: likeCounts,
	}
}

// ToggleLike flips the liked state for (user, template) and returns the new
// state with the recomputed count. Toggling twice restores the original
// state and count.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, templateID uuid.UUID) (*ToggleLikeResult, error) {
	var result ToggleLikeResult

	err := database.Retry(ctx, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := requireTemplate(tx, templateID); err != nil {
				return err
			}

			likeRepo := repository.NewLikeRepository(tx)

			liked, err := likeRepo.Exists(userID, templateID)
			if err != nil {
				return err
			}

			if liked {
				if err := likeRepo.Delete(userID, templateID); err != nil {
					return err
				}
			} else {
				like := &models.Like{UserID: userID, TemplateID: templateID}
				if err := likeRepo.Create(like); err != nil {
					return err
				}
			}

			count, err := likeRepo.CountForTemplate(templateID)
			if err != nil {
				return err
			}

			result = ToggleLikeResult{Liked: !liked, LikeCount: count}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	// Invalidation is best-effort; the next read recomputes and refills, and
	// a stale entry expires on its own.
	if cacheErr := s.likeCounts.InvalidateLikeCount(ctx, templateID); cacheErr != nil {
		logger.Log.Warn("Failed to invalidate like-count cache",
			zap.String("template_id", templateID.String()),
			zap.Error(cacheErr),
		)
	}

	logger.Log.Info("Like toggled",
		zap.String("user_id", userID.String()),
		zap.String("template_id", templateID.String()),
		zap.Bool("liked", result.Liked),
		zap.Int64("like_count", result.LikeCount),
	)

	return &result, nil
}

// LikeCount reads the cached count, falling back to (and refilling from)
// the database on a miss.
func (s *EngagementService) LikeCount(ctx context.Context, templateID uuid.UUID) (int64, error) {
	if count, ok, err := s.likeCounts.GetLikeCount(ctx, templateID); err == nil && ok {
		return count, nil
	}

	count, err := repository.NewLikeRepository(s.db).CountForTemplate(templateID)
	if err != nil {
		return 0, err
	}

	if cacheErr := s.likeCounts.SetLikeCount(ctx, templateID, count); cacheErr != nil {
		logger.Log.Warn("Failed to fill like-count cache",
			zap.String("template_id", templateID.String()),
			zap.Error(cacheErr),
		)
	}
	return count, nil
}

// LikedTemplateIDs returns the ids of templates the user has liked.
func (s *EngagementService) LikedTemplateIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	return repository.NewLikeRepository(s.db).TemplateIDsForUser(userID)
}

// LikedTemplates returns the full template rows the user has liked.
func (s *EngagementService) LikedTemplates(userID uuid.UUID) ([]models.Template, error) {
	ids, err := s.LikedTemplateIDs(userID)
	if err != nil {
		return nil, err
	}
	return repository.NewTemplateRepository(s.db).GetByIDs(ids)
}

// RecordDownload records the first download of a template by a user and
// returns the streaming URL of the download asset. A repeat call finds the
// existing record, inserts nothing, and returns the same URL.
func (s *EngagementService) RecordDownload(ctx context.Context, userID, templateID uuid.UUID) (*DownloadResult, error) {
	var result DownloadResult

	err := database.Retry(ctx, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := requireTemplate(tx, templateID); err != nil {
				return err
			}

			asset, err := repository.NewAssetRepository(tx).GetByTemplateAndKind(templateID, models.AssetKindDownload)
			if err != nil {
				return err
			}
			if asset == nil {
				return ErrDownloadAssetMissing
			}

			downloadRepo := repository.NewDownloadRepository(tx)

			existing, err := downloadRepo.GetByUserAndTemplate(userID, templateID)
			if err != nil {
				return err
			}

			streamURL := StreamPath + "?key=" + url.QueryEscape(asset.StorageKey)

			if existing != nil {
				result = DownloadResult{AlreadyDownloaded: true, URL: streamURL}
				return nil
			}

			download := &models.Download{
				ID:         uuid.New(),
				UserID:     userID,
				TemplateID: templateID,
			}
			if err := downloadRepo.Create(download); err != nil {
				return err
			}

			result = DownloadResult{AlreadyDownloaded: false, URL: streamURL}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	if !result.AlreadyDownloaded {
		logger.Log.Info("Download recorded",
			zap.String("user_id", userID.String()),
			zap.String("template_id", templateID.String()),
		)
	}

	return &result, nil
}

// CanStreamKey reports whether the user holds a download record for the
// template owning the asset stored at key. This is what authorizes a
// session user to follow the streaming URL RecordDownload handed them.
func (s *EngagementService) CanStreamKey(userID uuid.UUID, storageKey string) (bool, error) {
	asset, err := repository.NewAssetRepository(s.db).GetByStorageKey(storageKey)
	if err != nil {
		return false, err
	}
	if asset == nil {
		return false, nil
	}

	download, err := repository.NewDownloadRepository(s.db).GetByUserAndTemplate(userID, asset.TemplateID)
	if err != nil {
		return false, err
	}
	return download != nil, nil
}

// DownloadHistory returns the user's downloads newest first, joined with
// their templates.
func (s *EngagementService) DownloadHistory(userID uuid.UUID) ([]DownloadHistoryEntry, error) {
	downloads, err := repository.NewDownloadRepository(s.db).GetForUser(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(downloads))
	for _, d := range downloads {
		ids = append(ids, d.TemplateID)
	}

	templates, err := repository.NewTemplateRepository(s.db).GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Template, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}

	entries := make([]DownloadHistoryEntry, 0, len(downloads))
	for _, d := range downloads {
		entries = append(entries, DownloadHistoryEntry{
			Download: d,
			Template: byID[d.TemplateID],
		})
	}
	return entries, nil
}

func requireTemplate(tx *gorm.DB, templateID uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Template{}).Where("id = ?", templateID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
