//go:build integration

package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	natsAdapter "github.com/Abdurahmanit/reusehub/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/reusehub/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/reusehub/internal/config"
	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/listing/filter"
	"github.com/Abdurahmanit/reusehub/internal/listing/stats"
	"github.com/Abdurahmanit/reusehub/internal/listing/usecase"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	testMongoClient *mongo.Client
	testRedis       *redis.Client
	testNatsURL     string
	testLogger      *logger.Logger
)

func TestMain(m *testing.M) {
	testLogger = logger.NewNop()

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	hostConfig := func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	}

	mongoResource, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "mongo", Tag: "7.0"}, hostConfig)
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	redisResource, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"}, hostConfig)
	if err != nil {
		log.Fatalf("Could not start Redis resource: %s", err)
	}
	natsResource, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "nats", Tag: "2.10"}, hostConfig)
	if err != nil {
		log.Fatalf("Could not start NATS resource: %s", err)
	}
	testNatsURL = fmt.Sprintf("nats://%s", natsResource.GetHostPort("4222/tcp"))

	mongoCfg := config.MongoConfig{
		URI:            fmt.Sprintf("mongodb://%s", mongoResource.GetHostPort("27017/tcp")),
		Database:       "reusedb_test",
		ConnectTimeout: 10 * time.Second,
	}
	if err := pool.Retry(func() error {
		var errRetry error
		testMongoClient, errRetry = Connect(context.Background(), mongoCfg, "reusehub-test", testLogger)
		return errRetry
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}

	redisCfg := config.RedisConfig{Address: redisResource.GetHostPort("6379/tcp")}
	if err := pool.Retry(func() error {
		var errRetry error
		testRedis, errRetry = cache.NewRedisClient(context.Background(), redisCfg, testLogger)
		return errRetry
	}); err != nil {
		log.Fatalf("Could not connect to Redis: %s", err)
	}

	if err := pool.Retry(func() error {
		nc, errRetry := nats.Connect(testNatsURL)
		if errRetry != nil {
			return errRetry
		}
		nc.Close()
		return nil
	}); err != nil {
		log.Fatalf("Could not connect to NATS: %s", err)
	}

	code := m.Run()

	_ = testRedis.Close()
	_ = testMongoClient.Disconnect(context.Background())
	for _, r := range []*dockertest.Resource{mongoResource, redisResource, natsResource} {
		if err := pool.Purge(r); err != nil {
			log.Printf("Could not purge resource: %s", err)
		}
	}
	os.Exit(code)
}

func freshRepository(t *testing.T) *ListingRepository {
	t.Helper()
	ctx := context.Background()
	db := testMongoClient.Database("reusedb_test")
	_, err := db.Collection(listingCollectionName).DeleteMany(ctx, bson.M{})
	require.NoError(t, err)
	require.NoError(t, testRedis.FlushDB(ctx).Err())

	repo, err := NewListingRepository(ctx, db, testLogger)
	require.NoError(t, err)
	return repo
}

func listingInput(title, category string) domain.ListingInput {
	return domain.ListingInput{
		Title:         title,
		Description:   title + " in working order",
		Category:      category,
		Condition:     string(domain.ConditionGood),
		ItemType:      string(domain.ItemTypeGiveAway),
		ContactMethod: string(domain.ContactMessage),
		ContactInfo:   "@neighbour",
	}
}

func TestMongoListingRepository_Lifecycle(t *testing.T) {
	repo := freshRepository(t)
	ctx := context.Background()
	uc := usecase.NewListingUsecase(repo, stats.NewAggregator(nil), testLogger)

	a, err := uc.Create(ctx, listingInput("Laptop", "Electronics"))
	require.NoError(t, err)
	b, err := uc.Create(ctx, listingInput("Bookshelf", "Furniture"))
	require.NoError(t, err)

	all, err := uc.List(ctx, filter.Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)
	assert.Equal(t, a.ID, all[1].ID)

	got, err := uc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)

	_, err = uc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := uc.MarkRehomed(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRehomed, updated.Status)

	_, err = repo.UpdateStatus(ctx, a.ID, domain.StatusAvailable, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusRehomed, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Stats{TotalListings: 2, AvailableItems: 1, ItemsRehomed: 1, WasteDivertedKg: 30}, s)

	assert.NoError(t, repo.Ping(ctx))
}

func TestMongoListingRepository_DuplicateID(t *testing.T) {
	repo := freshRepository(t)
	ctx := context.Background()
	l := &domain.Listing{ID: "dup", Title: "x", Status: domain.StatusAvailable, CreatedAt: time.Now()}

	require.NoError(t, repo.Create(ctx, l))
	assert.ErrorIs(t, repo.Create(ctx, l), domain.ErrInvalidInput)
}

func TestCachedListingRepository_ReadThroughAndRefresh(t *testing.T) {
	repo := freshRepository(t)
	ctx := context.Background()
	cached := cache.NewCachedListingRepository(repo, testRedis, time.Minute, testLogger)
	uc := usecase.NewListingUsecase(cached, stats.NewAggregator(nil), testLogger)

	created, err := uc.Create(ctx, listingInput("Kettle", "Kitchen"))
	require.NoError(t, err)

	raw, err := testRedis.Get(ctx, "listing:"+created.ID).Bytes()
	require.NoError(t, err)
	var stored domain.Listing
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "Kettle", stored.Title)

	_, err = uc.MarkRehomed(ctx, created.ID)
	require.NoError(t, err)

	got, err := uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRehomed, got.Status)

	require.NoError(t, testRedis.Del(ctx, "listing:"+created.ID).Err())
	got, err = uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRehomed, got.Status)
	assert.Equal(t, int64(1), testRedis.Exists(ctx, "listing:"+created.ID).Val())
}

func TestNATSPublisher_ListingEvents(t *testing.T) {
	repo := freshRepository(t)
	ctx := context.Background()

	sub, err := nats.Connect(testNatsURL)
	require.NoError(t, err)
	defer sub.Close()
	msgs := make(chan *nats.Msg, 4)
	_, err = sub.ChanSubscribe("reusehub.listing.>", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := natsAdapter.NewPublisher(testNatsURL, "reusehub", 5*time.Second, testLogger, "reusehub-test")
	require.NoError(t, err)
	defer pub.Close()

	uc := usecase.NewListingUsecase(repo, stats.NewAggregator(nil), testLogger, usecase.WithPublisher(pub))
	created, err := uc.Create(ctx, listingInput("Tent", "Sports"))
	require.NoError(t, err)
	_, err = uc.MarkRehomed(ctx, created.ID)
	require.NoError(t, err)

	for _, want := range []string{"reusehub.listing.created", "reusehub.listing.rehomed"} {
		select {
		case msg := <-msgs:
			assert.Equal(t, want, msg.Subject)
			var payload map[string]interface{}
			require.NoError(t, json.Unmarshal(msg.Data, &payload))
			assert.Equal(t, created.ID, payload["listing_id"])
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}
