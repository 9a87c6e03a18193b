package leadpool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanlekkat/brio-lead-scraper/internal/leadpool"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/storage"
)

func newPool() *leadpool.Pool {
	return leadpool.NewPool(storage.NewMemoryStore(), logger.NewNoop())
}

func TestPool_TrackThenExists(t *testing.T) {
	p := newPool()
	ctx := context.Background()

	require.NoError(t, p.Track(ctx, "514-555-0001", "lead-1", "campaign-a"))

	exists, err := p.Exists(ctx, "(514) 555-0001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = p.Exists(ctx, "514-555-9999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPool_TrackFirstSeenWins(t *testing.T) {
	p := newPool()
	ctx := context.Background()

	require.NoError(t, p.Track(ctx, "5145550001", "lead-1", "campaign-a"))
	require.NoError(t, p.Track(ctx, "5145550001", "lead-2", "campaign-b"))

	entry, found, err := p.Lookup(ctx, "5145550001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "lead-1", entry.LeadID)
	assert.Equal(t, "campaign-a", entry.Campaign)
}

func TestPool_TrackInvalidPhoneIsNoop(t *testing.T) {
	p := newPool()
	ctx := context.Background()

	require.NoError(t, p.Track(ctx, "n/a", "lead-1", "campaign-a"))

	stats, err := p.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTracked)
}

func TestPool_UpdateScrapeStats(t *testing.T) {
	p := newPool()
	ctx := context.Background()

	require.NoError(t, p.UpdateScrapeStats(ctx, 40, 25, 10))
	require.NoError(t, p.UpdateScrapeStats(ctx, 10, 5, 2))

	stats, err := p.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.TotalScraped)
	assert.Equal(t, 30, stats.TotalImported)
	assert.Equal(t, 12, stats.TotalDuplicates)
	assert.False(t, stats.LastScrape.IsZero())
}
