package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
)

func TestSourceStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewSourceStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	source := domain.Source{ID: "s1", Name: "Team Drive", Platform: domain.PlatformGoogleDrive}
	require.NoError(t, store.Save(ctx, source))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Team Drive", got.Name)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStoreListBySource(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore()
	base := time.Now()

	for i, id := range []string{"j1", "j2", "j3"} {
		require.NoError(t, store.Save(ctx, domain.ConversionJob{
			ID:        id,
			SourceID:  "s1",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, store.Save(ctx, domain.ConversionJob{ID: "other", SourceID: "s2", CreatedAt: base}))

	jobs, err := store.ListBySource(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "j3", jobs[0].ID) // newest first

	limited, err := store.ListBySource(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSyncLogStoreAppendAndPrune(t *testing.T) {
	ctx := context.Background()
	store := NewSyncLogStore()
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, domain.SyncLog{
			ID:        string(rune('a' + i)),
			SourceID:  "s1",
			Action:    domain.ActionSyncPass,
			Outcome:   domain.OutcomeSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.List(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "e", entries[0].ID)

	require.NoError(t, store.Prune(ctx, 2))
	entries, err = store.List(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "e", entries[0].ID)
}

func TestConvertedFileStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewConvertedFileStore()

	_, err := store.Get(ctx, "/remote/report.docx", domain.PlatformOneDrive)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	file := domain.ConvertedFile{
		OriginalPath: "/remote/report.docx",
		Platform:     domain.PlatformOneDrive,
		Checksum:     "v1",
	}
	require.NoError(t, store.Upsert(ctx, file))

	// Same path on a different platform is a distinct key.
	file.Platform = domain.PlatformGoogleDrive
	file.Checksum = "v2"
	require.NoError(t, store.Upsert(ctx, file))

	got, err := store.Get(ctx, "/remote/report.docx", domain.PlatformOneDrive)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Checksum)

	// Upsert replaces idempotently.
	require.NoError(t, store.Upsert(ctx, domain.ConvertedFile{
		OriginalPath: "/remote/report.docx",
		Platform:     domain.PlatformOneDrive,
		Checksum:     "v3",
	}))
	got, err = store.Get(ctx, "/remote/report.docx", domain.PlatformOneDrive)
	require.NoError(t, err)
	assert.Equal(t, "v3", got.Checksum)

	byPlatform, err := store.ListByPlatform(ctx, domain.PlatformGoogleDrive)
	require.NoError(t, err)
	assert.Len(t, byPlatform, 1)
}
