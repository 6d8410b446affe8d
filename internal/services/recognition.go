package services

import (
	"context"

	"github.com/atlaspedia/atlaspedia-backend/internal/clients/gcp"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// RecognitionService produces recognition contexts from raw images for
// the classifier. It is optional: without a configured vision backend
// the rest of the system keeps working on text heuristics alone.
type RecognitionService interface {
	Recognize(ctx context.Context, img []byte) (*types.RecognitionContext, error)
	Enabled() bool
}

type recognitionService struct {
	log        *logger.Logger
	recognizer gcp.Recognizer
}

func NewRecognitionService(baseLog *logger.Logger, recognizer gcp.Recognizer) RecognitionService {
	return &recognitionService{
		log:        baseLog.With("service", "RecognitionService"),
		recognizer: recognizer,
	}
}

func (s *recognitionService) Enabled() bool {
	return s.recognizer != nil
}

func (s *recognitionService) Recognize(ctx context.Context, img []byte) (*types.RecognitionContext, error) {
	if s.recognizer == nil {
		return nil, apperrors.ConflictError("image recognition is not configured")
	}
	if len(img) == 0 {
		return nil, apperrors.ValidationError("image payload is empty")
	}
	rc, err := s.recognizer.RecognizeImage(ctx, img)
	if err != nil {
		return nil, apperrors.InternalError("recognize image", err)
	}
	return rc, nil
}
