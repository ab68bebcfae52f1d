package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

func TestSearch_BlankQueryMakesNoCall(t *testing.T) {
	engine := &fakeEngine{}
	svc := NewSearchService(engine, logger.Discard())

	for _, q := range []string{"", "   "} {
		products, err := svc.Search(context.Background(), q)
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	}
	assert.Equal(t, 0, engine.calls)
}

func TestSearch_TrimsAndCaps(t *testing.T) {
	engine := &fakeEngine{results: []domain.Product{{ID: 1, Name: "Mug"}}}
	svc := NewSearchService(engine, logger.Discard())

	products, err := svc.Search(context.Background(), "  mug ")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "mug", engine.query)
	assert.Equal(t, SearchLimit, engine.limit)
}

func TestSearch_EngineFailure(t *testing.T) {
	svc := NewSearchService(&fakeEngine{err: errors.New("timeout")}, logger.Discard())

	_, err := svc.Search(context.Background(), "mug")
	assert.ErrorIs(t, err, apperrors.ErrRemoteCallFailed)
}
