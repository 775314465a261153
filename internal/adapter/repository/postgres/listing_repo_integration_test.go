//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/reusehub/internal/config"
	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env:        []string{"POSTGRES_USER=reuse", "POSTGRES_PASSWORD=reuse", "POSTGRES_DB=reusedb"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start PostgreSQL resource: %s", err)
	}

	cfg := config.PostgresConfig{
		DSN:            fmt.Sprintf("postgres://reuse:reuse@%s/reusedb?sslmode=disable", resource.GetHostPort("5432/tcp")),
		MaxOpenConns:   5,
		ConnectRetries: 1,
	}
	if err := pool.Retry(func() error {
		var errRetry error
		testDB, errRetry = Open(context.Background(), cfg, logger.NewNop())
		return errRetry
	}); err != nil {
		log.Fatalf("Could not connect to PostgreSQL: %s", err)
	}

	code := m.Run()

	_ = testDB.Close()
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge resource: %s", err)
	}
	os.Exit(code)
}

func freshRepository(t *testing.T) *ListingRepository {
	t.Helper()
	_, err := testDB.ExecContext(context.Background(), `TRUNCATE items`)
	require.NoError(t, err)
	return NewListingRepository(testDB, logger.NewNop())
}

func sampleListing(t *testing.T, id string, createdAt time.Time) *domain.Listing {
	t.Helper()
	l, err := domain.NewListing(id, domain.ListingInput{
		Title:         "Bookshelf",
		Description:   "Five shelves",
		Category:      string(domain.CategoryFurniture),
		Condition:     string(domain.ConditionGood),
		ItemType:      string(domain.ItemTypeGiveAway),
		ContactMethod: string(domain.ContactEmail),
		ContactInfo:   "a@example.com",
	}, createdAt)
	require.NoError(t, err)
	return l
}

func TestListingRepository_Lifecycle(t *testing.T) {
	repo := freshRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, sampleListing(t, "a", base)))
	require.NoError(t, repo.Create(ctx, sampleListing(t, "b", base.Add(time.Minute))))

	err := repo.Create(ctx, sampleListing(t, "a", base))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryFurniture, got.Category)
	assert.True(t, got.CreatedAt.Equal(base))

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rehomedAt := base.Add(time.Hour)
	updated, err := repo.UpdateStatus(ctx, "a", domain.StatusRehomed, rehomedAt)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRehomed, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(rehomedAt))

	_, err = repo.UpdateStatus(ctx, "a", domain.StatusAvailable, rehomedAt)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusRehomed, rehomedAt)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, repo.Ping(ctx))
}
