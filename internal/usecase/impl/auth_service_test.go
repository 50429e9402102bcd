package impl

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/errors"
	"energyfit/internal/usecase"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a bcrypt hash and returns the new principal", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		out, err := f.srv.Register(ctx, &usecase.RegisterInput{
			Name: "Ana Vendedora", Email: "ana@energyfit.com", Password: "secret",
			Kind: entity.PrincipalKindSeller, Phone: "11999990000",
		})
		require.NoError(t, err)
		require.NotNil(t, out.Principal)
		assert.Equal(t, int64(1), out.Principal.ID)
		assert.Equal(t, entity.PrincipalKindSeller, out.Principal.Kind)

		stored, ok := f.store.principal(entity.PrincipalKindSeller, out.Principal.ID)
		require.True(t, ok)
		assert.NotEqual(t, "secret", stored.PasswordHash)
		assert.True(t, f.hasher.Check("secret", stored.PasswordHash))
		require.NotNil(t, stored.Phone)
		assert.Equal(t, "11999990000", *stored.Phone)
	})

	t.Run("phone is dropped for administrators", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		out, err := f.srv.Register(ctx, &usecase.RegisterInput{
			Name: "Root", Email: "root@energyfit.com", Password: "pw",
			Kind: entity.PrincipalKindAdmin, Phone: "123",
		})
		require.NoError(t, err)
		assert.Nil(t, out.Principal.Phone)
	})

	t.Run("missing fields and unknown kind are validation errors", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		tests := []struct {
			name  string
			input usecase.RegisterInput
		}{
			{"no name", usecase.RegisterInput{Email: "a@b.c", Password: "x", Kind: entity.PrincipalKindAdmin}},
			{"no email", usecase.RegisterInput{Name: "A", Password: "x", Kind: entity.PrincipalKindAdmin}},
			{"no password", usecase.RegisterInput{Name: "A", Email: "a@b.c", Kind: entity.PrincipalKindAdmin}},
			{"no kind", usecase.RegisterInput{Name: "A", Email: "a@b.c", Password: "x"}},
			{"unknown kind", usecase.RegisterInput{Name: "A", Email: "a@b.c", Password: "x", Kind: "cliente"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.srv.Register(ctx, &tt.input)
				assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
			})
		}
	})

	t.Run("duplicate email within a kind is rejected", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		input := &usecase.RegisterInput{Name: "A", Email: "dup@energyfit.com", Password: "x", Kind: entity.PrincipalKindAdmin}

		_, err := f.srv.Register(ctx, input)
		require.NoError(t, err)

		_, err = f.srv.Register(ctx, input)
		assert.ErrorIs(t, err, domainerrors.ErrDuplicateEmail)
	})

	t.Run("same email may exist once per kind", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		_, err := f.srv.Register(ctx, &usecase.RegisterInput{Name: "A", Email: "both@energyfit.com", Password: "x", Kind: entity.PrincipalKindAdmin})
		require.NoError(t, err)
		_, err = f.srv.Register(ctx, &usecase.RegisterInput{Name: "A", Email: "both@energyfit.com", Password: "x", Kind: entity.PrincipalKindSeller})
		require.NoError(t, err)
	})

	t.Run("password over the bcrypt limit", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		_, err := f.srv.Register(ctx, &usecase.RegisterInput{
			Name: "A", Email: "long@energyfit.com", Password: strings.Repeat("a", 73), Kind: entity.PrincipalKindAdmin,
		})
		assert.ErrorIs(t, err, domainerrors.ErrPasswordTooLong)
		assert.Empty(t, f.store.rows[entity.PrincipalKindAdmin])
	})

	t.Run("concurrent registrations of one email produce a single principal", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		const attempts = 8
		var (
			wg         sync.WaitGroup
			successes  atomic.Int32
			duplicates atomic.Int32
		)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.srv.Register(ctx, &usecase.RegisterInput{
					Name: "Race", Email: "race@energyfit.com", Password: "x", Kind: entity.PrincipalKindSeller,
				})
				switch {
				case err == nil:
					successes.Add(1)
				case errors.Is(err, domainerrors.ErrDuplicateEmail):
					duplicates.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
		assert.Equal(t, int32(attempts-1), duplicates.Load())
		assert.Len(t, f.store.rows[entity.PrincipalKindSeller], 1)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixtures(newTestConfig())

	f.store.seed(entity.PrincipalKindAdmin, "Admin", "shared@energyfit.com", f.mustHash("admin-pw"))
	f.store.seed(entity.PrincipalKindSeller, "Seller", "shared@energyfit.com", f.mustHash("seller-pw"))
	f.store.seed(entity.PrincipalKindSeller, "Only Seller", "seller@energyfit.com", f.mustHash("pw"))

	tests := []struct {
		name     string
		email    string
		password string
		wantKind entity.PrincipalKind
		wantName string
	}{
		{"admin password matches the admin row", "shared@energyfit.com", "admin-pw", entity.PrincipalKindAdmin, "Admin"},
		{"seller password falls through to sellers", "shared@energyfit.com", "seller-pw", entity.PrincipalKindSeller, "Seller"},
		{"seller without admin row", "seller@energyfit.com", "pw", entity.PrincipalKindSeller, "Only Seller"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := f.srv.Login(ctx, &usecase.LoginInput{Email: tt.email, Password: tt.password})
			require.NoError(t, err)
			require.NotNil(t, view)
			assert.Equal(t, tt.wantKind, view.Kind)
			assert.Equal(t, tt.wantName, view.Name)
			assert.Equal(t, tt.email, view.Email)
		})
	}

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		view, err := f.srv.Login(ctx, &usecase.LoginInput{Email: "seller@energyfit.com", Password: "nope"})
		require.NoError(t, err)
		assert.Nil(t, view)

		view, err = f.srv.Login(ctx, &usecase.LoginInput{Email: "ghost@energyfit.com", Password: "pw"})
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("empty credentials", func(t *testing.T) {
		_, err := f.srv.Login(ctx, &usecase.LoginInput{Email: "seller@energyfit.com"})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		broken := newAuthFixtures(newTestConfig())
		broken.store.findErr = domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "find")

		view, err := broken.srv.Login(ctx, &usecase.LoginInput{Email: "a@b.c", Password: "pw"})
		assert.Nil(t, view)
		require.Error(t, err)
		assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	})
}

func TestAuthService_IssueRecoveryToken(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the digest and sends the plaintext", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		seller := f.store.seed(entity.PrincipalKindSeller, "Bia", "bia@energyfit.com", f.mustHash("pw"))

		fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		f.srv.now = func() time.Time { return fixed }

		out, err := f.srv.IssueRecoveryToken(ctx, "bia@energyfit.com")
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Len(t, out.Token, 43)
		assert.Equal(t, fixed.Add(time.Hour), out.ExpiresAt)

		record, ok := f.store.tokens[f.tokens.Hash(out.Token)]
		require.True(t, ok)
		assert.Equal(t, seller.ID, record.PrincipalID)
		assert.Equal(t, entity.PrincipalKindSeller, record.PrincipalKind)
		assert.NotContains(t, f.store.tokens, out.Token)

		f.srv.Wait()
		sent := f.notifier.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, sentRecovery{email: "bia@energyfit.com", name: "Bia", token: out.Token}, sent[0])
	})

	t.Run("administrators are found before sellers", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		f.store.seed(entity.PrincipalKindAdmin, "Admin", "both@energyfit.com", f.mustHash("pw"))
		f.store.seed(entity.PrincipalKindSeller, "Seller", "both@energyfit.com", f.mustHash("pw"))

		out, err := f.srv.IssueRecoveryToken(ctx, "both@energyfit.com")
		require.NoError(t, err)

		record := f.store.tokens[f.tokens.Hash(out.Token)]
		assert.Equal(t, entity.PrincipalKindAdmin, record.PrincipalKind)
		f.srv.Wait()
	})

	t.Run("unknown email returns nothing and stores nothing", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		out, err := f.srv.IssueRecoveryToken(ctx, "ghost@energyfit.com")
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Zero(t, f.store.tokenCount())

		f.srv.Wait()
		assert.Empty(t, f.notifier.messages())
	})

	t.Run("empty email", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		_, err := f.srv.IssueRecoveryToken(ctx, "")
		assert.ErrorIs(t, err, domainerrors.ErrEmailRequired)
	})

	t.Run("notifier failure does not fail the request", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		f.notifier.err = errors.New("smtp down")
		f.store.seed(entity.PrincipalKindAdmin, "Admin", "admin@energyfit.com", f.mustHash("pw"))

		out, err := f.srv.IssueRecoveryToken(ctx, "admin@energyfit.com")
		require.NoError(t, err)
		require.NotNil(t, out)

		f.srv.Wait()
		assert.Len(t, f.notifier.messages(), 1)
		assert.Equal(t, 1, f.store.tokenCount())
	})

	t.Run("notification outlives a cancelled request", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		f.store.seed(entity.PrincipalKindAdmin, "Admin", "admin@energyfit.com", f.mustHash("pw"))

		reqCtx, cancel := context.WithCancel(ctx)
		_, err := f.srv.IssueRecoveryToken(reqCtx, "admin@energyfit.com")
		require.NoError(t, err)
		cancel()

		f.srv.Wait()
		assert.Len(t, f.notifier.messages(), 1)
	})

	t.Run("each request issues a distinct token", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		f.store.seed(entity.PrincipalKindAdmin, "Admin", "admin@energyfit.com", f.mustHash("pw"))

		first, err := f.srv.IssueRecoveryToken(ctx, "admin@energyfit.com")
		require.NoError(t, err)
		second, err := f.srv.IssueRecoveryToken(ctx, "admin@energyfit.com")
		require.NoError(t, err)

		assert.NotEqual(t, first.Token, second.Token)
		assert.Equal(t, 2, f.store.tokenCount())
		f.srv.Wait()
	})
}

func TestAuthService_ResetPasswordWithToken(t *testing.T) {
	ctx := context.Background()

	issue := func(t *testing.T, f *authFixtures, email string) string {
		t.Helper()
		out, err := f.srv.IssueRecoveryToken(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, out)
		f.srv.Wait()

		return out.Token
	}

	t.Run("full recovery cycle", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		_, err := f.srv.Register(ctx, &usecase.RegisterInput{
			Name: "Caio", Email: "caio@energyfit.com", Password: "old-pw", Kind: entity.PrincipalKindSeller,
		})
		require.NoError(t, err)

		token := issue(t, f, "caio@energyfit.com")

		ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "new-pw"})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Zero(t, f.store.tokenCount())

		view, err := f.srv.Login(ctx, &usecase.LoginInput{Email: "caio@energyfit.com", Password: "new-pw"})
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, entity.PrincipalKindSeller, view.Kind)

		view, err = f.srv.Login(ctx, &usecase.LoginInput{Email: "caio@energyfit.com", Password: "old-pw"})
		require.NoError(t, err)
		assert.Nil(t, view)

		ok, err = f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "again"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: "not-a-token", NewPassword: "pw"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())

		_, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: "t"})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		_, err = f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{NewPassword: "pw"})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("expired token is redeemed while enforcement is off", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		f.store.seed(entity.PrincipalKindAdmin, "Admin", "admin@energyfit.com", f.mustHash("pw"))
		token := issue(t, f, "admin@energyfit.com")

		f.srv.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "new"})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired token is rejected and removed when enforced", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.Auth.EnforceRecoveryTokenExpiry = true
		f := newAuthFixtures(cfg)
		admin := f.store.seed(entity.PrincipalKindAdmin, "Admin", "admin@energyfit.com", f.mustHash("pw"))
		token := issue(t, f, "admin@energyfit.com")

		f.srv.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "new"})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, f.store.tokenCount())

		stored, _ := f.store.principal(entity.PrincipalKindAdmin, admin.ID)
		assert.True(t, f.hasher.Check("pw", stored.PasswordHash))
	})

	t.Run("fresh token passes when enforced", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.Auth.EnforceRecoveryTokenExpiry = true
		f := newAuthFixtures(cfg)
		f.store.seed(entity.PrincipalKindAdmin, "Admin", "admin@energyfit.com", f.mustHash("pw"))
		token := issue(t, f, "admin@energyfit.com")

		ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "new"})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("token with an unknown kind", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		token, err := f.tokens.Generate()
		require.NoError(t, err)
		f.store.tokens[f.tokens.Hash(token)] = entity.RecoveryToken{
			PrincipalID: 1, PrincipalKind: "cliente", TokenHash: f.tokens.Hash(token), ExpiresAt: time.Now().Add(time.Hour),
		}

		ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "new"})
		assert.False(t, ok)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidPrincipalKind)
	})

	t.Run("token whose principal no longer exists", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		token, err := f.tokens.Generate()
		require.NoError(t, err)
		f.store.tokens[f.tokens.Hash(token)] = entity.RecoveryToken{
			PrincipalID: 42, PrincipalKind: entity.PrincipalKindSeller, TokenHash: f.tokens.Hash(token), ExpiresAt: time.Now().Add(time.Hour),
		}

		ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "new"})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, f.store.tokenCount())
	})

	t.Run("principal removed while the reset is in progress", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		token, err := f.tokens.Generate()
		require.NoError(t, err)
		f.store.tokens[f.tokens.Hash(token)] = entity.RecoveryToken{
			PrincipalID: 7, PrincipalKind: entity.PrincipalKindAdmin, TokenHash: f.tokens.Hash(token), ExpiresAt: time.Now().Add(time.Hour),
		}
		f.srv.principalRepo = staleLookupRepo{&memoryPrincipalRepo{store: f.store}}

		ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: "new"})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, f.store.tokenCount())
	})

	t.Run("concurrent redemptions have one winner", func(t *testing.T) {
		f := newAuthFixtures(newTestConfig())
		admin := f.store.seed(entity.PrincipalKindAdmin, "Admin", "admin@energyfit.com", f.mustHash("pw"))
		token := issue(t, f, "admin@energyfit.com")

		const attempts = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners []string
		)
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				password := "candidate-" + string(rune('a'+i))
				ok, err := f.srv.ResetPasswordWithToken(ctx, &usecase.ResetPasswordInput{Token: token, NewPassword: password})
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					winners = append(winners, password)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Len(t, winners, 1)
		stored, _ := f.store.principal(entity.PrincipalKindAdmin, admin.ID)
		assert.True(t, f.hasher.Check(winners[0], stored.PasswordHash))
		assert.Zero(t, f.store.tokenCount())
	})
}

func TestAuthService_WaitDrainsDispatches(t *testing.T) {
	f := newAuthFixtures(newTestConfig())
	f.store.seed(entity.PrincipalKindAdmin, "Admin", "admin@energyfit.com", f.mustHash("pw"))

	_, err := f.srv.IssueRecoveryToken(context.Background(), "admin@energyfit.com")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		f.srv.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notification dispatch did not finish")
	}
	assert.Len(t, f.notifier.messages(), 1)
}

// staleLookupRepo answers FindByID from an outdated read, as if the row was
// deleted right after it.
type staleLookupRepo struct {
	*memoryPrincipalRepo
}

func (r staleLookupRepo) FindByID(_ context.Context, kind entity.PrincipalKind, id int64) (*entity.Principal, error) {
	return &entity.Principal{ID: id, Kind: kind}, nil
}
