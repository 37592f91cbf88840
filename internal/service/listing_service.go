package service

import (
	"context"
	"errors"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/assistant"
	"github.com/aadhilm732/TGTPETSUAE/internal/util"

	"go.uber.org/zap"
)

// ListingAssistant extracts a structured listing from a product photo
type ListingAssistant interface {
	ExtractListing(ctx context.Context, base64Image, mimeType string) (*assistant.Listing, error)
}

// ListingService wraps the generative listing assistant, translating its
// failures into the service error taxonomy so callers can tell "retry later"
// from "this image is unparseable".
type ListingService struct {
	client ListingAssistant
	logger *zap.Logger
}

// NewListingService creates a new listing service
func NewListingService(client ListingAssistant) *ListingService {
	return &ListingService{
		client: client,
		logger: util.GetLogger(),
	}
}

// GenerateListing returns a {name, description} pair extracted from the image
func (s *ListingService) GenerateListing(ctx context.Context, base64Image, mimeType string) (*assistant.Listing, error) {
	ctx, span := util.StartSpan(ctx, "ListingService.GenerateListing")
	defer span.End()

	util.AssistantRequestsTotal.Inc()
	start := time.Now()

	listing, err := s.client.ExtractListing(ctx, base64Image, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			util.AssistantFailuresTotal.WithLabelValues("timeout").Inc()
			return nil, ErrUpstreamTimeout
		case errors.Is(err, assistant.ErrMalformedResponse):
			util.AssistantFailuresTotal.WithLabelValues("malformed").Inc()
			s.logger.Warn("Assistant returned unparseable listing", zap.Error(err))
			return nil, ErrMalformedAssistantResponse
		default:
			util.AssistantFailuresTotal.WithLabelValues("unavailable").Inc()
			s.logger.Error("Assistant request failed", zap.Error(err))
			return nil, ErrAssistantUnavailable
		}
	}

	s.logger.Info("Listing extracted",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("name", listing.Name))
	return listing, nil
}
