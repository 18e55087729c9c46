package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/keystore"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/realtime"
	"finance-dashboard/internal/remote"
)

func newStore(t *testing.T) (*Store, *keystore.Memory) {
	t.Helper()
	broker := realtime.NewMemory(logger.Nop())
	t.Cleanup(func() { _ = broker.Close() })
	keys := keystore.NewMemory()
	return New(keys, broker, logger.Nop()), keys
}

func TestSignIn_PersistsDemoIdentity(t *testing.T) {
	s, keys := newStore(t)
	ctx := context.Background()

	got, err := s.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	sess, err := s.SignIn(ctx, "ana@example.com", "ignored")
	require.NoError(t, err)
	assert.Equal(t, domain.DemoUserID, sess.ID)

	// 重新创建 store，身份仍然可以从 keystore 恢复
	again := New(keys, realtime.NewMemory(logger.Nop()), logger.Nop())
	got, err = again.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ana@example.com", got.Email)

	require.NoError(t, again.SignOut(ctx))
	got, err = again.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfile_DefaultThenMerged(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.SignIn(ctx, "", "")
	require.NoError(t, err)

	p, err := s.GetProfile(ctx, domain.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "Usuário Dev", p.FullName)
	assert.Equal(t, DefaultDemoEmail, p.Email)
	assert.True(t, p.Dark())

	light := domain.ThemeLight
	require.NoError(t, s.UpsertProfile(ctx, domain.DemoUserID, domain.ProfileUpdate{ThemePreference: &light}))
	p, err = s.GetProfile(ctx, domain.DemoUserID)
	require.NoError(t, err)
	assert.False(t, p.Dark())
	assert.Equal(t, "BRL", p.DefaultCurrency)

	_, err = s.GetProfile(ctx, "other")
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestTransactions_CRUDAndEvents(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.ListTransactions(ctx, domain.DemoUserID)
	assert.ErrorIs(t, err, remote.ErrNotAuthenticated)

	_, err = s.SignIn(ctx, "dev@example.com", "")
	require.NoError(t, err)

	sub, err := s.SubscribeTransactions(ctx, domain.DemoUserID)
	require.NoError(t, err)
	defer sub.Close()

	in, err := domain.NewTransactionInput(domain.Income, decimal.NewFromInt(5000), time.Now(), "Salário", "Salário")
	require.NoError(t, err)
	tx, err := s.InsertTransaction(ctx, domain.DemoUserID, in)
	require.NoError(t, err)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, domain.Inserted, ev.Kind)
		assert.Equal(t, tx.ID, ev.Record.ID)
	case <-time.After(time.Second):
		t.Fatal("no insert event")
	}

	in.Category = "Freelance"
	require.NoError(t, s.UpdateTransaction(ctx, domain.DemoUserID, tx.ID, in))
	list, err := s.ListTransactions(ctx, domain.DemoUserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Freelance", list[0].Category)

	require.NoError(t, s.DeleteTransaction(ctx, domain.DemoUserID, tx.ID))
	list, err = s.ListTransactions(ctx, domain.DemoUserID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.InsertTransaction(ctx, "intruder", in)
	assert.ErrorIs(t, err, remote.ErrForbidden)
}

func TestInvestments(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_, err := s.SignIn(ctx, "dev@example.com", "")
	require.NoError(t, err)

	inv, err := s.InsertInvestment(ctx, domain.DemoUserID, domain.InvestmentInput{
		Ticker:        "petr4",
		Quantity:      decimal.NewFromInt(100),
		PurchasePrice: decimal.RequireFromString("32.10"),
		PurchaseDate:  time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "PETR4", inv.Ticker)

	list, err := s.ListInvestments(ctx, domain.DemoUserID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteInvestment(ctx, domain.DemoUserID, inv.ID))
	list, err = s.ListInvestments(ctx, domain.DemoUserID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRequestPasswordReset_Unsupported(t *testing.T) {
	s, _ := newStore(t)
	assert.ErrorIs(t, s.RequestPasswordReset(context.Background(), "a@b.c"), ErrUnsupported)
}

// vanishingKeys 在第二次读取演示身份之前删除它，模拟并发登出
type vanishingKeys struct {
	*keystore.Memory
	reads int
}

func (k *vanishingKeys) Get(key string) ([]byte, error) {
	if key == keystore.DemoUserKey {
		k.reads++
		if k.reads == 2 {
			_ = k.Memory.Delete(key)
		}
	}
	return k.Memory.Get(key)
}

func TestUpsertProfile_SignOutBetweenReads(t *testing.T) {
	broker := realtime.NewMemory(logger.Nop())
	t.Cleanup(func() { _ = broker.Close() })
	keys := &vanishingKeys{Memory: keystore.NewMemory()}
	s := New(keys, broker, logger.Nop())
	ctx := context.Background()

	_, err := s.SignIn(ctx, "ana@example.com", "")
	require.NoError(t, err)
	keys.reads = 0

	name := "Ana"
	require.NotPanics(t, func() {
		err = s.UpsertProfile(ctx, domain.DemoUserID, domain.ProfileUpdate{FullName: &name})
	})
	require.NoError(t, err)

	// 身份已被删除，之后的写入按未登录处理
	err = s.UpsertProfile(ctx, domain.DemoUserID, domain.ProfileUpdate{FullName: &name})
	assert.ErrorIs(t, err, remote.ErrNotAuthenticated)
}

func TestUpdateCredentials_RenamesDemoIdentity(t *testing.T) {
	s, keys := newStore(t)
	ctx := context.Background()

	_, err := s.SignIn(ctx, "old@example.com", "")
	require.NoError(t, err)

	email := "new@example.com"
	require.NoError(t, s.UpdateCredentials(ctx, &email, nil))

	again := New(keys, realtime.NewMemory(logger.Nop()), logger.Nop())
	got, err := again.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new@example.com", got.Email)
}

func TestConfirmPasswordReset_Unsupported(t *testing.T) {
	s, _ := newStore(t)
	assert.ErrorIs(t, s.ConfirmPasswordReset(context.Background(), "token", "secret1"), ErrUnsupported)
}
