package tracker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/session"
	"budget/internal/storage"
	"budget/internal/storage/memory"
	"budget/internal/tracker"
)

// flakyKV fails every Put while failing is set.
type flakyKV struct {
	*memory.Store
	failing atomic.Bool
}

func (f *flakyKV) Put(ctx context.Context, key string, value []byte) error {
	if f.failing.Load() {
		return errors.New("quota exceeded")
	}
	return f.Store.Put(ctx, key, value)
}

func newKV() *flakyKV { return &flakyKV{Store: memory.New()} }

func open(t *testing.T, kv storage.KV, opts ...tracker.Option) *tracker.Tracker {
	t.Helper()
	opts = append([]tracker.Option{tracker.WithStart(2026, 0)}, opts...)
	tr := tracker.New(storage.NewGateway(kv), opts...)
	require.NoError(t, tr.Open(context.Background()))
	return tr
}

func cents(c int64) core.Money { return core.Money{Cents: c} }

func TestOpenInitialisesAndPersistsYear(t *testing.T) {
	kv := newKV()
	tr := open(t, kv)

	assert.Equal(t, 12, tr.Snapshot().Len())
	_, found, err := kv.Get(context.Background(), storage.MonthStoreKey(2026))
	require.NoError(t, err)
	assert.True(t, found)

	v, err := tr.View()
	require.NoError(t, err)
	assert.Equal(t, "2026-01", v.Summary.Month.ID)
	assert.Equal(t, "January", v.Summary.Month.Name)
	assert.Len(t, v.MonthNames, 12)
	assert.Len(t, v.Summary.Days, 31)
	assert.Equal(t, session.Anonymous, v.State)
	assert.Nil(t, v.Identity)
}

func TestExpensesAndBalance(t *testing.T) {
	ctx := context.Background()
	tr := open(t, newKV())

	income, err := tr.UpdateIncome(ctx, cents(100000))
	require.NoError(t, err)
	assert.Equal(t, cents(100000), income)
	income, err = tr.UpdateIncome(ctx, cents(50000))
	require.NoError(t, err)
	assert.Equal(t, cents(150000), income)

	lunch, err := tr.AddExpense(ctx, "2026-01-05", "Lunch", cents(4550))
	require.NoError(t, err)
	_, err = tr.AddExpense(ctx, "2026-01-05", "Bus", cents(450))
	require.NoError(t, err)

	v, err := tr.View()
	require.NoError(t, err)
	day := v.Summary.Days[4]
	assert.Equal(t, "2026-01-05", day.Key)
	assert.Equal(t, cents(5000), day.Total)
	assert.Equal(t, cents(5000), v.Summary.Expenses)
	assert.Equal(t, cents(145000), v.Summary.Balance)

	require.NoError(t, tr.RemoveExpense(ctx, "2026-01-05", lunch.ID))
	require.NoError(t, tr.RemoveExpense(ctx, "2026-01-05", "no-such-id"))
	v, err = tr.View()
	require.NoError(t, err)
	assert.Equal(t, cents(450), v.Summary.Expenses)
}

func TestMutationValidation(t *testing.T) {
	ctx := context.Background()
	tr := open(t, newKV())

	_, err := tr.UpdateIncome(ctx, cents(-1))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = tr.AddExpense(ctx, "2026-01-05", "  ", cents(100))
	assert.ErrorIs(t, err, core.ErrEmptyDescription)

	_, err = tr.AddExpense(ctx, "2026-01-05", "Tea", cents(0))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = tr.AddExpense(ctx, "2026-02-01", "Tea", cents(100))
	assert.ErrorIs(t, err, core.ErrDayOutsideMonth)

	assert.ErrorIs(t, tr.SelectMonth(12), core.ErrInvalidMonth)
	assert.ErrorIs(t, tr.SelectMonth(-1), core.ErrInvalidMonth)
	assert.ErrorIs(t, tr.SelectYear(ctx, 0), core.ErrInvalidYear)
}

func TestSelectYearAndMonth(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	tr := open(t, kv)

	require.NoError(t, tr.SelectMonth(1))
	_, err := tr.AddExpense(ctx, "2026-02-14", "Flowers", cents(2000))
	require.NoError(t, err)

	require.NoError(t, tr.SelectYear(ctx, 2028))
	v, err := tr.View()
	require.NoError(t, err)
	assert.Equal(t, "2028-02", v.Summary.Month.ID)
	assert.Len(t, v.Summary.Days, 29)
	assert.True(t, v.Summary.Expenses.IsZero())

	require.NoError(t, tr.SelectYear(ctx, 2026))
	v, err = tr.View()
	require.NoError(t, err)
	assert.Equal(t, cents(2000), v.Summary.Expenses)
	assert.Len(t, v.Summary.Days, 28)

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, storage.MonthStoreKey(2028))
}

func TestWriteFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	tr := open(t, kv)

	kv.failing.Store(true)
	item, err := tr.AddExpense(ctx, "2026-01-10", "Cinema", cents(1200))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrPersistence)
	assert.NotEmpty(t, item.ID)

	v, err := tr.View()
	require.NoError(t, err)
	assert.Equal(t, cents(1200), v.Summary.Expenses)

	// next successful write carries the earlier change
	kv.failing.Store(false)
	_, err = tr.UpdateIncome(ctx, cents(100))
	require.NoError(t, err)

	reopened := open(t, kv)
	v, err = reopened.View()
	require.NoError(t, err)
	assert.Equal(t, cents(1200), v.Summary.Expenses)
	assert.Equal(t, cents(100), v.Summary.Month.Income)
}

func TestYearSwitchKeepsUnsavedChanges(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	tr := open(t, kv)

	kv.failing.Store(true)
	_, err := tr.AddExpense(ctx, "2026-01-05", "Rent", cents(50000))
	require.ErrorIs(t, err, core.ErrPersistence)

	require.ErrorIs(t, tr.SelectYear(ctx, 2027), core.ErrPersistence)
	require.NoError(t, tr.SelectYear(ctx, 2026))

	v, err := tr.View()
	require.NoError(t, err)
	require.Len(t, v.Summary.Days[4].Items, 1)
	assert.Equal(t, "Rent", v.Summary.Days[4].Items[0].Description)
	assert.Equal(t, 24, tr.Snapshot().Len())

	// a write from another year also carries the unsaved one
	kv.failing.Store(false)
	require.NoError(t, tr.SelectYear(ctx, 2027))
	_, err = tr.UpdateIncome(ctx, cents(100))
	require.NoError(t, err)

	reopened := open(t, kv)
	v, err = reopened.View()
	require.NoError(t, err)
	assert.Equal(t, cents(50000), v.Summary.Expenses)

	require.NoError(t, reopened.SelectYear(ctx, 2027))
	v, err = reopened.View()
	require.NoError(t, err)
	assert.Equal(t, cents(100), v.Summary.Month.Income)
}

func TestOpenWithCorruptYear(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	require.NoError(t, kv.Put(ctx, storage.MonthStoreKey(2026), []byte("{broken")))

	tr := tracker.New(storage.NewGateway(kv), tracker.WithStart(2026, 3))
	err := tr.Open(ctx)
	require.ErrorIs(t, err, core.ErrPersistence)

	v, err := tr.View()
	require.NoError(t, err)
	assert.Equal(t, "2026-04", v.Summary.Month.ID)

	raw, _, err := kv.Get(ctx, storage.MonthStoreKey(2026))
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(raw))
}

func TestAuthenticationFlow(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	tr := open(t, kv, tracker.WithVerifier(session.PlaintextVerifier{}))

	id, err := tr.SignUp(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, core.Identity{Name: "Ada", Email: "ada@example.com"}, id)

	_, err = tr.SignUp(ctx, "Other", "ada@example.com", "x")
	assert.ErrorIs(t, err, core.ErrEmailTaken)

	// session survives a restart
	restarted := open(t, kv)
	state, current := restarted.Session()
	assert.Equal(t, session.Authenticated, state)
	require.NotNil(t, current)
	assert.Equal(t, "Ada", current.Name)

	require.NoError(t, restarted.SignOut(ctx))
	state, current = restarted.Session()
	assert.Equal(t, session.Anonymous, state)
	assert.Nil(t, current)
	_, found, err := kv.Get(ctx, storage.SessionKey)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = restarted.SignIn(ctx, "ada@example.com", "Secret")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	state, _ = restarted.Session()
	assert.Equal(t, session.Anonymous, state)

	_, err = restarted.SignIn(ctx, "ada@example.com", "secret")
	require.NoError(t, err)

	id, err = restarted.SignInWithProvider(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Google User", id.Name)
	assert.Equal(t, "user@gmail.com", id.Email)
}

func TestSignUpPersistenceWarning(t *testing.T) {
	ctx := context.Background()
	kv := newKV()
	tr := open(t, kv)

	kv.failing.Store(true)
	id, err := tr.SignUp(ctx, "Ada", "ada@example.com", "secret")
	assert.ErrorIs(t, err, core.ErrPersistence)
	assert.Equal(t, "Ada", id.Name)

	state, _ := tr.Session()
	assert.Equal(t, session.Authenticated, state)
}

func TestConcurrentAddsAreSerialised(t *testing.T) {
	ctx := context.Background()
	tr := open(t, newKV())

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.AddExpense(ctx, "2026-01-20", "Snack", cents(100))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := tr.View()
	require.NoError(t, err)
	assert.Len(t, v.Summary.Days[19].Items, n)
	assert.Equal(t, cents(100*n), v.Summary.Expenses)
}
