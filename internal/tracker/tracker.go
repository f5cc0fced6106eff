// Package tracker is the application service behind every presentation
// adapter. It owns the active year and month, the latest month store
// snapshot and the session, and it writes every change through the
// persistence gateway.
//
// Mutations are serialised, so each one derives from the snapshot left by
// the previous one. When a write fails the in-memory state is kept and the
// error, wrapping core.ErrPersistence, is returned as a warning next to the
// successful result. The next mutation writes the whole year again.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"budget/internal/calendar"
	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/monthstore"
	"budget/internal/session"
)

// Gateway persists month stores, the session and the credential registry.
type Gateway interface {
	LoadMonthStore(ctx context.Context, year int) (monthstore.Snapshot, bool, error)
	SaveMonthStore(ctx context.Context, year int, snap monthstore.Snapshot) error
	LoadSession(ctx context.Context) (*core.Identity, error)
	SaveSession(ctx context.Context, id core.Identity) error
	ClearSession(ctx context.Context) error
	LoadCredentialRegistry(ctx context.Context) (core.Registry, error)
	SaveCredentialRegistry(ctx context.Context, r core.Registry) error
}

type Tracker struct {
	mu sync.Mutex

	gw      Gateway
	logger  *log.Logger
	session *session.Store
	snap    monthstore.Snapshot
	year    int
	month   int

	// years whose last write failed; retried with the next write
	unsaved map[int]bool

	sessionOpts []session.Option
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger. Defaults to the slog default logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.logger = l.WithComponent(log.ComponentTracker) }
}

// WithStart sets the year and zero based month that Open activates.
// Defaults to the current date.
func WithStart(year, monthIndex int) Option {
	return func(t *Tracker) {
		t.year = year
		t.month = monthIndex
	}
}

// WithVerifier sets the password scheme used for sign up and sign in.
func WithVerifier(v session.PasswordVerifier) Option {
	return func(t *Tracker) { t.sessionOpts = append(t.sessionOpts, session.WithVerifier(v)) }
}

// WithProvider sets the third party identity provider.
func WithProvider(p session.IdentityProvider) Option {
	return func(t *Tracker) { t.sessionOpts = append(t.sessionOpts, session.WithProvider(p)) }
}

func New(gw Gateway, opts ...Option) *Tracker {
	now := time.Now()
	t := &Tracker{
		gw:      gw,
		logger:  log.FromContext(context.Background()).WithComponent(log.ComponentTracker),
		snap:    monthstore.Empty(),
		year:    now.Year(),
		month:   int(now.Month()) - 1,
		unsaved: map[int]bool{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.session = session.New(nil, nil, t.sessionOpts...)
	return t
}

// Open restores the persisted session and loads the active year, creating
// it when absent. Unreadable records are replaced by empty state in memory
// and reported as a warning; nothing is overwritten until the next change.
func (t *Tracker) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.month < 0 || t.month > 11 {
		return fmt.Errorf("%w: %d", core.ErrInvalidMonth, t.month)
	}

	var warnings []error
	registry, err := t.gw.LoadCredentialRegistry(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "Credential registry unreadable, starting empty", log.FieldError, err)
		warnings = append(warnings, persistenceError(err))
		registry = core.Registry{}
	}
	restored, err := t.gw.LoadSession(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "Session unreadable, starting signed out", log.FieldError, err)
		warnings = append(warnings, persistenceError(err))
		restored = nil
	}
	t.session = session.New(registry, restored, t.sessionOpts...)

	if err := t.activateYear(ctx, t.year); err != nil {
		warnings = append(warnings, err)
	}

	t.logger.InfoContext(ctx, "Tracker opened",
		log.FieldYear, t.year,
		log.FieldMonth, calendar.MonthID(t.year, t.month),
		"session", t.session.State().String())
	return errors.Join(warnings...)
}

// SelectYear makes year active, loading it or initialising twelve empty
// months. Years already held stay in memory, including changes that could
// not be saved. The active month index is kept.
func (t *Tracker) SelectYear(ctx context.Context, year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: %d", core.ErrInvalidYear, year)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.activateYear(ctx, year)
}

// SelectMonth makes the zero based month index active.
func (t *Tracker) SelectMonth(monthIndex int) error {
	if monthIndex < 0 || monthIndex > 11 {
		return fmt.Errorf("%w: %d", core.ErrInvalidMonth, monthIndex)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.month = monthIndex
	return nil
}

// activateYear makes year active, adding it to the held snapshot when it is
// not there yet. Caller holds mu.
func (t *Tracker) activateYear(ctx context.Context, year int) error {
	if t.snap.HasYear(year) {
		t.year = year
		return nil
	}
	snap, found, err := t.gw.LoadMonthStore(ctx, year)
	if err != nil {
		err = persistenceError(err)
		t.logger.WarnContext(ctx, "Month store unreadable, starting empty year",
			log.FieldYear, year, log.FieldError, err)
		t.snap = monthstore.InitializeYear(t.snap, year)
		t.year = year
		return err
	}
	t.year = year
	if found {
		t.snap = monthstore.Merge(t.snap, snap)
		return nil
	}
	t.snap = monthstore.InitializeYear(t.snap, year)
	return t.persistYear(ctx)
}

// View is the read model of the active month.
type View struct {
	Year       int
	MonthIndex int
	MonthNames []string
	Summary    ledger.MonthSummary
	State      session.State
	Identity   *core.Identity
}

// View returns the active month with its per-day breakdown and totals.
func (t *Tracker) View() (View, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.snap.Get(t.activeMonthID())
	if !ok {
		return View{}, fmt.Errorf("%w: %s", core.ErrUnknownMonth, t.activeMonthID())
	}
	summary, err := ledger.Summarize(m)
	if err != nil {
		return View{}, err
	}
	v := View{
		Year:       t.year,
		MonthIndex: t.month,
		MonthNames: calendar.MonthNames(t.year),
		Summary:    summary,
		State:      t.session.State(),
	}
	if id, ok := t.session.Current(); ok {
		v.Identity = &id
	}
	return v, nil
}

// Snapshot returns the held month store.
func (t *Tracker) Snapshot() monthstore.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// UpdateIncome adds delta to the income of the active month.
func (t *Tracker) UpdateIncome(ctx context.Context, delta core.Money) (core.Money, error) {
	if delta.IsNegative() {
		return core.Money{}, fmt.Errorf("income: %w", core.ErrInvalidAmount)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.activeMonthID()
	m, ok := t.snap.Get(id)
	if !ok {
		return core.Money{}, fmt.Errorf("%w: %s", core.ErrUnknownMonth, id)
	}
	next, err := monthstore.SetIncome(t.snap, id, m.Income.Add(delta))
	if err != nil {
		return core.Money{}, err
	}
	t.snap = next
	income := m.Income.Add(delta)

	t.logger.InfoContext(ctx, "Income updated",
		log.FieldMonth, id, log.FieldAmountCents, income.Cents)
	return income, t.persistYear(ctx)
}

// AddExpense appends an item to dayKey of the active month.
func (t *Tracker) AddExpense(ctx context.Context, dayKey, description string, amount core.Money) (core.ExpenseItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.activeMonthID()
	next, item, err := monthstore.AddExpense(t.snap, id, dayKey, description, amount)
	if err != nil {
		return core.ExpenseItem{}, err
	}
	t.snap = next

	t.logger.InfoContext(ctx, "Expense added",
		log.NewFields().WithMonth(id).WithExpense(dayKey, item.ID, item.Description, item.Amount.Cents).ToSlice()...)
	return item, t.persistYear(ctx)
}

// RemoveExpense drops the item itemID from dayKey of the active month. An
// unknown day or id changes nothing and writes nothing.
func (t *Tracker) RemoveExpense(ctx context.Context, dayKey, itemID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.activeMonthID()
	next, err := monthstore.RemoveExpense(t.snap, id, dayKey, itemID)
	if err != nil {
		return err
	}
	if next.Same(t.snap) {
		return nil
	}
	t.snap = next

	t.logger.InfoContext(ctx, "Expense removed",
		log.FieldMonth, id, log.FieldDay, dayKey, log.FieldExpenseID, itemID)
	return t.persistYear(ctx)
}

func (t *Tracker) activeMonthID() string {
	return calendar.MonthID(t.year, t.month)
}

// persistYear writes the active year and retries every year whose last
// write failed.
func (t *Tracker) persistYear(ctx context.Context) error {
	t.unsaved[t.year] = true
	years := make([]int, 0, len(t.unsaved))
	for y := range t.unsaved {
		years = append(years, y)
	}
	sort.Ints(years)

	var errs []error
	for _, y := range years {
		if err := t.gw.SaveMonthStore(ctx, y, t.snap); err != nil {
			err = persistenceError(err)
			t.logger.WarnContext(ctx, "Month store not saved, keeping in-memory state",
				log.FieldOperation, log.OpPersist, log.FieldYear, y, log.FieldError, err)
			errs = append(errs, err)
			continue
		}
		delete(t.unsaved, y)
	}
	return errors.Join(errs...)
}

func persistenceError(err error) error {
	if err == nil || errors.Is(err, core.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrPersistence, err)
}
