package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairwaylabs/clubtrack/scorecard"
	"github.com/fairwaylabs/clubtrack/storage"
)

// ScorecardResult bundles the structured extraction with the stored image.
type ScorecardResult struct {
	Scorecard *scorecard.ExtractedScorecard `json:"scorecard"`
	ImageURL  string                        `json:"image_url,omitempty"`
}

type ScorecardService interface {
	ExtractFromImage(ctx context.Context, profileID int, image []byte, mimeType string) (*ScorecardResult, error)
}

type scorecardService struct {
	extractor scorecard.Extractor
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewScorecardService(extractor scorecard.Extractor, uploader storage.FileUploader, logger *slog.Logger) ScorecardService {
	return &scorecardService{
		extractor: extractor,
		uploader:  uploader,
		logger:    logger,
	}
}

// ExtractFromImage runs the vision extraction and archives the original
// image. Extraction never fails from the caller's point of view: any vision
// error degrades to the fixed mock payload. Image archival is best-effort
// too; a storage failure only costs the image URL.
func (s *scorecardService) ExtractFromImage(ctx context.Context, profileID int, image []byte, mimeType string) (*ScorecardResult, error) {
	if profileID <= 0 {
		return nil, ErrUnauthenticated
	}

	card, err := s.extractor.Extract(ctx, image, mimeType)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("scorecard extraction failed, falling back to mock payload",
				slog.Int("profile_id", profileID),
				slog.Any("error", err))
		}
		card = scorecard.Mock()
	}

	result := &ScorecardResult{Scorecard: card}

	if s.uploader != nil && len(image) > 0 {
		key := fmt.Sprintf("scorecards/%d/%d%s", profileID, time.Now().UnixNano(), extensionFor(mimeType))
		upload, err := s.uploader.Upload(ctx, key, mimeType, bytes.NewReader(image))
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("scorecard image upload failed",
					slog.String("key", key),
					slog.Any("error", err))
			}
		} else {
			result.ImageURL = upload.Location
		}
	}

	return result, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}
