package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Abdurahmanit/reusehub/internal/adapter/repository/memory"
	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/listing/filter"
	"github.com/Abdurahmanit/reusehub/internal/listing/stats"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/Abdurahmanit/reusehub/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) UpdateStatus(ctx context.Context, id string, status domain.ListingStatus, at time.Time) (*domain.Listing, error) {
	args := m.Called(ctx, id, status, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func validInput() domain.ListingInput {
	return domain.ListingInput{
		Title:         "Old Laptop",
		Description:   "Works fine, small scratch on the lid",
		Category:      string(domain.CategoryElectronics),
		Condition:     string(domain.ConditionGood),
		ItemType:      string(domain.ItemTypeGiveAway),
		ContactMethod: string(domain.ContactEmail),
		ContactInfo:   "a@example.com",
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
}

func newTestUsecase(repo domain.ListingRepository, opts ...Option) *ListingUsecase {
	opts = append([]Option{WithClock(fixedClock()), WithIDGenerator(sequentialIDs())}, opts...)
	return NewListingUsecase(repo, stats.NewAggregator(stats.DefaultWeights()), logger.NewNop(), opts...)
}

func TestListingUsecase_Create_Success(t *testing.T) {
	repo := new(MockListingRepository)
	pub := new(MockEventPublisher)
	m := metrics.NewMetricsManager("test")
	uc := newTestUsecase(repo, WithPublisher(pub), WithMetrics(m))
	ctx := context.Background()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
		return l.ID == "id-1" && l.Status == domain.StatusAvailable
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, EventListingCreated, mock.Anything).Return(nil).Once()

	listing, err := uc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "id-1", listing.ID)
	assert.Equal(t, domain.StatusAvailable, listing.Status)
	assert.Equal(t, listing.CreatedAt, listing.UpdatedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsCreatedTotal.WithLabelValues("Electronics", "give_away")))

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestListingUsecase_Create_ValidationFailureDoesNotTouchStore(t *testing.T) {
	repo := new(MockListingRepository)
	m := metrics.NewMetricsManager("test")
	uc := newTestUsecase(repo, WithMetrics(m))

	in := validInput()
	in.Category = "Vehicles"
	_, err := uc.Create(context.Background(), in)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "category", vErr.Field)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("category")))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListingUsecase_Create_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(MockListingRepository)
	pub := new(MockEventPublisher)
	uc := newTestUsecase(repo, WithPublisher(pub))

	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	pub.On("Publish", mock.Anything, EventListingCreated, mock.Anything).Return(errors.New("nats down")).Once()

	listing, err := uc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotNil(t, listing)
	pub.AssertExpectations(t)
}

func TestListingUsecase_Create_StoreFailure(t *testing.T) {
	repo := new(MockListingRepository)
	uc := newTestUsecase(repo)

	storeErr := fmt.Errorf("%w: connection reset", domain.ErrTransientStore)
	repo.On("Create", mock.Anything, mock.Anything).Return(storeErr).Once()

	_, err := uc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrTransientStore)
}

func TestListingUsecase_Create_DefaultIDsAreUnique(t *testing.T) {
	uc := NewListingUsecase(memory.NewListingRepository(), stats.NewAggregator(nil), logger.NewNop())
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		l, err := uc.Create(context.Background(), validInput())
		require.NoError(t, err)
		_, dup := seen[l.ID]
		require.False(t, dup, "duplicate id %s", l.ID)
		seen[l.ID] = struct{}{}
	}
}

func TestListingUsecase_List_NewestFirstAndFiltered(t *testing.T) {
	uc := newTestUsecase(memory.NewListingRepository())
	ctx := context.Background()

	first, err := uc.Create(ctx, validInput())
	require.NoError(t, err)
	sofa := validInput()
	sofa.Title = "Sofa"
	sofa.Description = "Three seater"
	sofa.Category = string(domain.CategoryFurniture)
	second, err := uc.Create(ctx, sofa)
	require.NoError(t, err)

	all, err := uc.List(ctx, filter.Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	laptops, err := uc.List(ctx, filter.Query{Text: "laptop"})
	require.NoError(t, err)
	require.Len(t, laptops, 1)
	assert.Equal(t, first.ID, laptops[0].ID)

	none, err := uc.List(ctx, filter.Query{Category: "Books"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListingUsecase_Get(t *testing.T) {
	uc := newTestUsecase(memory.NewListingRepository())
	ctx := context.Background()

	created, err := uc.Create(ctx, validInput())
	require.NoError(t, err)

	got, err := uc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	_, err = uc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingUsecase_SetStatus(t *testing.T) {
	pub := new(MockEventPublisher)
	m := metrics.NewMetricsManager("test")
	uc := newTestUsecase(memory.NewListingRepository(), WithPublisher(pub), WithMetrics(m))
	ctx := context.Background()

	pub.On("Publish", mock.Anything, EventListingCreated, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, EventListingRehomed, mock.Anything).Return(nil).Once()

	created, err := uc.Create(ctx, validInput())
	require.NoError(t, err)

	t.Run("unknown status", func(t *testing.T) {
		_, err := uc.SetStatus(ctx, created.ID, "sold")
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "status", vErr.Field)
	})

	t.Run("missing listing", func(t *testing.T) {
		_, err := uc.SetStatus(ctx, "nope", "rehomed")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("legacy alias rehomes", func(t *testing.T) {
		updated, err := uc.SetStatus(ctx, created.ID, "completed")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRehomed, updated.Status)
		assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC), updated.CreatedAt)
		assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 2, 0, time.UTC), updated.UpdatedAt)
	})

	t.Run("repeat is a no-op", func(t *testing.T) {
		updated, err := uc.MarkRehomed(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRehomed, updated.Status)
	})

	t.Run("rehomed is terminal", func(t *testing.T) {
		_, err := uc.SetStatus(ctx, created.ID, "available")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsRehomedTotal))
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestListingUsecase_Stats(t *testing.T) {
	uc := newTestUsecase(memory.NewListingRepository())
	ctx := context.Background()

	empty, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Stats{}, empty)

	laptop, err := uc.Create(ctx, validInput())
	require.NoError(t, err)
	chair := validInput()
	chair.Category = string(domain.CategoryFurniture)
	_, err = uc.Create(ctx, chair)
	require.NoError(t, err)
	_, err = uc.MarkRehomed(ctx, laptop.ID)
	require.NoError(t, err)

	s, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalListings)
	assert.Equal(t, 1, s.AvailableItems)
	assert.Equal(t, 1, s.ItemsRehomed)
	assert.InDelta(t, 30.0, s.WasteDivertedKg, 1e-9)
}

func TestListingUsecase_Stats_StoreFailure(t *testing.T) {
	repo := new(MockListingRepository)
	uc := newTestUsecase(repo)
	repo.On("List", mock.Anything).Return(nil, domain.ErrTransientStore).Once()

	_, err := uc.Stats(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransientStore)
}
