package contacts

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/unkn0wn-root/multicache"
)

type mockStore struct {
	mock.Mock
}

var _ Store = (*mockStore)(nil)

func (m *mockStore) FindAll(ctx context.Context) ([]Contact, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Contact), args.Error(1)
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (Contact, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Contact), args.Bool(1), args.Error(2)
}

func (m *mockStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, c Contact) (Contact, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(Contact), args.Error(1)
}

func (m *mockStore) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var (
	alex    = Contact{ID: 2000, Name: "alex", Email: "alex@mail.com", Phone: "123 456"}
	notAlex = Contact{ID: 2000, Name: "not-alex", Email: "not-alex@mail.com", Phone: "654 321"}
)

// newRegistry builds the demo layout: contacts in redis, friend-list local.
func newRegistry(t *testing.T) (*multicache.Registry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	spec := multicache.DefaultRemoteSpec()
	spec.KeyPrefix = "contacts"
	reg, err := multicache.Build(multicache.Config{
		EnableRemote: multicache.Enabled,
		EnableLocal:  multicache.Enabled,
		Remote:       map[string]multicache.RemoteSpec{ContactsCache: spec},
		Local:        map[string]multicache.LocalSpec{FriendsCache: {Spec: "expireAfterAccess=30s,recordStats"}},
	}, multicache.Options{ApplicationName: "cachetests", RedisClient: rdb})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close(context.Background()) })
	return reg, mr
}

func newTestService(t *testing.T, store Store) (*Service, *miniredis.Miniredis) {
	t.Helper()
	reg, mr := newRegistry(t)
	svc, err := NewService(store, reg, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, svc.ClearCache(context.Background()))
	return svc, mr
}

func TestFindByIDReturnsContact(t *testing.T) {
	store := &mockStore{}
	store.On("FindByID", mock.Anything, alex.ID).Return(alex, true, nil)
	svc, mr := newTestService(t, store)

	found, err := svc.FindByID(context.Background(), alex.ID)
	require.NoError(t, err)
	assert.Equal(t, alex.ID, found.ID)
	assert.Equal(t, alex.Name, found.Name)
	assert.True(t, mr.Exists("cachetests-contacts::2000"))
}

func TestCachedContactSurvivesStoreChange(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("FindByID", mock.Anything, alex.ID).Return(alex, true, nil).Once()
	svc, _ := newTestService(t, store)

	_, err := svc.FindByID(ctx, alex.ID)
	require.NoError(t, err)

	store.On("FindByID", mock.Anything, alex.ID).Return(Contact{}, false, nil)
	next, err := svc.FindByID(ctx, notAlex.ID)
	require.NoError(t, err)
	assert.Equal(t, alex.Name, next.Name)
	store.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestDeleteEvictsCachedContact(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("FindByID", mock.Anything, alex.ID).Return(alex, true, nil).Once()
	store.On("ExistsByID", mock.Anything, alex.ID).Return(false, nil)
	svc, _ := newTestService(t, store)

	shouldBeAlex, err := svc.FindByID(ctx, alex.ID)
	require.NoError(t, err)

	store.On("FindByID", mock.Anything, notAlex.ID).Return(notAlex, true, nil)
	require.NoError(t, svc.Delete(ctx, alex.ID))

	shouldBeNotAlex, err := svc.FindByID(ctx, notAlex.ID)
	require.NoError(t, err)
	assert.Equal(t, alex.Name, shouldBeAlex.Name)
	assert.Equal(t, notAlex.Name, shouldBeNotAlex.Name)
	store.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestFriendLookupsUseLocalCache(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("FindByID", mock.Anything, alex.ID).Return(alex, true, nil)
	reg, _ := newRegistry(t)
	svc, err := NewService(store, reg, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		f, err := svc.FindFriendByID(ctx, alex.ID)
		require.NoError(t, err)
		assert.Equal(t, alex, f)
	}
	store.AssertNumberOfCalls(t, "FindByID", 1)

	stats, ok := reg.MustLookup(FriendsCache).Stats()
	require.True(t, ok)
	assert.EqualValues(t, 2, stats.Hits)
}

func TestNotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("FindByID", mock.Anything, int64(9)).Return(Contact{}, false, nil)
	svc, mr := newTestService(t, store)

	_, err := svc.FindByID(ctx, 9)
	require.ErrorIs(t, err, ErrContactNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(9), nf.ID)
	assert.False(t, mr.Exists("cachetests-contacts::9"))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(alex)
	svc, _ := newTestService(t, store)

	_, err := svc.FindByID(ctx, alex.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, alex.ID, Contact{ID: alex.ID, Name: "alexandra"})
	require.NoError(t, err)
	assert.Equal(t, "alexandra", updated.Name)

	found, err := svc.FindByID(ctx, alex.ID)
	require.NoError(t, err)
	assert.Equal(t, "alexandra", found.Name, "update must evict the cached contact")
}

func TestUpdateMismatchedIDs(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore(alex))
	_, err := svc.Update(context.Background(), alex.ID, Contact{ID: 1, Name: "x"})
	var mm *MismatchedIDsError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, alex.ID, mm.PathID)
	assert.Equal(t, int64(1), mm.BodyID)
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore())
	_, err := svc.Update(context.Background(), 5, Contact{Name: "x"})
	require.ErrorIs(t, err, ErrContactNotFound)
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(alex, Contact{Name: "sam"})
	svc, mr := newTestService(t, store)
	_, _ = svc.FindByID(ctx, alex.ID)
	_, _ = svc.FindByID(ctx, alex.ID+1)
	require.NoError(t, mr.Set("unrelated", "x"))

	require.NoError(t, svc.ClearCache(ctx))
	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}

func TestNewServiceNeedsBothCaches(t *testing.T) {
	reg, err := multicache.Build(multicache.Config{}, multicache.Options{})
	require.NoError(t, err)
	_, err = NewService(NewMemoryStore(), reg, nil, nil)
	assert.Error(t, err)
}

func TestMemoryStoreAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Contact{ID: 10, Name: "a"})
	c, err := s.Save(ctx, Contact{Name: "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), c.ID)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(10), all[0].ID)

	require.NoError(t, s.DeleteByID(ctx, 10))
	ok, err := s.ExistsByID(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}
