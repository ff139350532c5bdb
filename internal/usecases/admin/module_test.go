package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/persistence"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	users  map[int64]*domain.User
	getErr error
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		m.users[u.TelegramID] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	m.users[user.TelegramID] = user
	return nil
}

func (m *mockUserRepo) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[telegramID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetOrCreate(_ context.Context, user *domain.User) (*domain.User, error) {
	if existing, ok := m.users[user.TelegramID]; ok {
		return existing, nil
	}
	m.users[user.TelegramID] = user
	return user, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, _ *domain.User) error { return nil }

func (m *mockUserRepo) SetStatus(_ context.Context, telegramID int64, status domain.UserStatus) error {
	u, ok := m.users[telegramID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) GetByTelegramIDTx(_ context.Context, _ persistence.Transaction, telegramID int64) (*domain.User, error) {
	return m.GetByTelegramID(context.Background(), telegramID)
}

// ---

type mockLedger struct {
	balances map[int64]int64
	entries  []*domain.Transaction
	applyErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{balances: make(map[int64]int64)}
}

func (m *mockLedger) ApplyDelta(_ context.Context, entry *domain.Transaction) (int64, error) {
	if m.applyErr != nil {
		return 0, m.applyErr
	}
	m.balances[entry.UserID] += entry.Amount
	m.entries = append(m.entries, entry)
	return m.balances[entry.UserID], nil
}

func (m *mockLedger) GetBalance(_ context.Context, telegramID int64) (int64, error) {
	return m.balances[telegramID], nil
}

func (m *mockLedger) TotalCredits(_ context.Context) (int64, error) {
	var total int64
	for _, b := range m.balances {
		total += b
	}
	return total, nil
}

func (m *mockLedger) PaymentExists(_ context.Context, _ string) (bool, error) { return false, nil }

func (m *mockLedger) ListByUser(_ context.Context, _ int64, _ int) ([]domain.Transaction, error) {
	return nil, nil
}

// ---

type mockAdminLogRepo struct {
	entries   []*domain.AdminLog
	createErr error
}

func (m *mockAdminLogRepo) Create(_ context.Context, entry *domain.AdminLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAdminLogRepo) ListRecent(_ context.Context, _ int) ([]domain.AdminLog, error) {
	return nil, nil
}

// ---

type mockGenCounter struct {
	total int64
}

func (m *mockGenCounter) Create(_ context.Context, _ *domain.Generation) error { return nil }
func (m *mockGenCounter) GetByTaskID(_ context.Context, _ string) (*domain.Generation, error) {
	return nil, domain.ErrGenerationNotFound
}
func (m *mockGenCounter) SetProcessing(_ context.Context, _ string, _ string) error { return nil }
func (m *mockGenCounter) MarkCompleted(_ context.Context, _ string, _ string, _ time.Time) (bool, error) {
	return false, nil
}
func (m *mockGenCounter) MarkFailed(_ context.Context, _ string, _ string, _ time.Time) (bool, error) {
	return false, nil
}
func (m *mockGenCounter) ListStuckProcessing(_ context.Context, _ time.Time) ([]domain.Generation, error) {
	return nil, nil
}
func (m *mockGenCounter) Count(_ context.Context) (int64, error) { return m.total, nil }
func (m *mockGenCounter) CountByUser(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type adminFixture struct {
	uc     *UseCase
	users  *mockUserRepo
	ledger *mockLedger
	logs   *mockAdminLogRepo
}

func newAdminFixture(t *testing.T, environment string) *adminFixture {
	t.Helper()
	adminUser := &domain.User{TelegramID: 1, Status: domain.UserStatusAdmin}
	regular := &domain.User{TelegramID: 2, Status: domain.UserStatusRegular}

	f := &adminFixture{
		users:  newMockUserRepo(adminUser, regular),
		ledger: newMockLedger(),
		logs:   &mockAdminLogRepo{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.uc = New(f.users, f.ledger, &mockGenCounter{total: 7}, f.logs, environment, log)
	return f
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestGrantCredits(t *testing.T) {
	f := newAdminFixture(t, "production")

	newBalance, err := f.uc.GrantCredits(context.Background(), 1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), newBalance)

	require.Len(t, f.ledger.entries, 1)
	entry := f.ledger.entries[0]
	assert.Equal(t, domain.TransactionTypeAdminGrant, entry.Type)
	assert.Equal(t, int64(2), entry.UserID)

	// аудит пишется всегда
	require.Len(t, f.logs.entries, 1)
	audit := f.logs.entries[0]
	assert.Equal(t, int64(1), audit.AdminID)
	assert.Equal(t, int64(2), audit.TargetUserID)
	assert.Equal(t, domain.AdminActionGrantCredits, audit.Action)
}

func TestGrantCredits_DisabledOutsideProduction(t *testing.T) {
	for _, env := range []string{"development", "staging", ""} {
		t.Run("env="+env, func(t *testing.T) {
			f := newAdminFixture(t, env)

			_, err := f.uc.GrantCredits(context.Background(), 1, 2, 100)
			require.ErrorIs(t, err, domain.ErrAdminDisabled)
			assert.Empty(t, f.ledger.entries)
		})
	}
}

func TestGrantCredits_NotAdmin(t *testing.T) {
	f := newAdminFixture(t, "production")

	_, err := f.uc.GrantCredits(context.Background(), 2, 2, 100)
	require.ErrorIs(t, err, domain.ErrNotAdmin)
	assert.Empty(t, f.ledger.entries)
}

func TestGrantCredits_LookupFailureDenies(t *testing.T) {
	f := newAdminFixture(t, "production")
	f.users.getErr = fmt.Errorf("db is down")

	// любое сомнение трактуется как отказ
	_, err := f.uc.GrantCredits(context.Background(), 1, 2, 100)
	require.ErrorIs(t, err, domain.ErrNotAdmin)
}

func TestGrantCredits_AmountBounds(t *testing.T) {
	f := newAdminFixture(t, "production")

	for _, amount := range []int64{0, -5, MaxGrantAmount + 1} {
		_, err := f.uc.GrantCredits(context.Background(), 1, 2, amount)
		require.ErrorIs(t, err, domain.ErrInvalidGrantAmount, "amount=%d", amount)
	}
	assert.Empty(t, f.ledger.entries)

	newBalance, err := f.uc.GrantCredits(context.Background(), 1, 2, MaxGrantAmount)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxGrantAmount), newBalance)
}

func TestGrantCredits_AuditFailureDoesNotRollback(t *testing.T) {
	f := newAdminFixture(t, "production")
	f.logs.createErr = fmt.Errorf("audit table is locked")

	newBalance, err := f.uc.GrantCredits(context.Background(), 1, 2, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), newBalance)
}

func TestGetUserCredits(t *testing.T) {
	f := newAdminFixture(t, "production")
	f.ledger.balances[2] = 30

	credits, err := f.uc.GetUserCredits(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(30), credits)

	// та же авторизация, что и у начисления
	_, err = f.uc.GetUserCredits(context.Background(), 2, 2)
	require.ErrorIs(t, err, domain.ErrNotAdmin)
}

func TestStats(t *testing.T) {
	f := newAdminFixture(t, "production")
	f.ledger.balances[1] = 5
	f.ledger.balances[2] = 20

	stats, err := f.uc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(25), stats.TotalCredits)
	assert.Equal(t, int64(7), stats.TotalGenerations)
}

func TestStats_RequiresAdmin(t *testing.T) {
	f := newAdminFixture(t, "production")

	_, err := f.uc.Stats(context.Background(), 2)
	require.ErrorIs(t, err, domain.ErrNotAdmin)
}
