package service

import (
	"context"
	"testing"

	"github.com/aadhilm732/TGTPETSUAE/internal/assistant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	listing *assistant.Listing
	err     error
}

func (f *fakeAssistant) ExtractListing(_ context.Context, _, _ string) (*assistant.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listing, nil
}

func TestGenerateListing(t *testing.T) {
	svc := NewListingService(&fakeAssistant{
		listing: &assistant.Listing{Name: "Dog Leash", Description: "A strong leash."},
	})

	listing, err := svc.GenerateListing(context.Background(), "aW1n", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Dog Leash", listing.Name)
}

func TestGenerateListingErrorTranslation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"timeout", context.DeadlineExceeded, ErrUpstreamTimeout},
		{"malformed", assistant.ErrMalformedResponse, ErrMalformedAssistantResponse},
		{"unavailable", assistant.ErrUnavailable, ErrAssistantUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewListingService(&fakeAssistant{err: tt.err})

			_, err := svc.GenerateListing(context.Background(), "aW1n", "image/png")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
