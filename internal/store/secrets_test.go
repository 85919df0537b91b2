package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/concur-accruals/internal/secrets"
	"github.com/donaldgifford/concur-accruals/internal/store"
	storeMocks "github.com/donaldgifford/concur-accruals/internal/store/mocks"
)

func TestRefreshTokenSecrets_Secret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		setup   func(m *storeMocks.MockStore)
		want    string
		wantErr error
	}{
		{
			name:   "latest token",
			secret: secrets.NameRefreshToken,
			setup: func(m *storeMocks.MockStore) {
				m.EXPECT().LatestRefreshToken(mock.Anything).Return("rt-3", nil).Once()
			},
			want: "rt-3",
		},
		{
			name:   "nothing persisted yet",
			secret: secrets.NameRefreshToken,
			setup: func(m *storeMocks.MockStore) {
				m.EXPECT().LatestRefreshToken(mock.Anything).Return("", store.ErrNotFound).Once()
			},
			wantErr: secrets.ErrSecretNotFound,
		},
		{
			name:   "database down",
			secret: secrets.NameRefreshToken,
			setup: func(m *storeMocks.MockStore) {
				m.EXPECT().LatestRefreshToken(mock.Anything).
					Return("", errors.New("connection refused")).Once()
			},
			wantErr: secrets.ErrStoreUnavailable,
		},
		{
			name:    "other names are never served",
			secret:  secrets.NameClientSecret,
			setup:   func(_ *storeMocks.MockStore) {},
			wantErr: secrets.ErrSecretNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := storeMocks.NewMockStore(t)
			tt.setup(m)

			p := store.NewRefreshTokenSecrets(m)
			assert.Equal(t, "postgres", p.Name())

			got, err := p.Secret(context.Background(), tt.secret)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefreshTokenSecrets_SetSecret(t *testing.T) {
	t.Parallel()

	m := storeMocks.NewMockStore(t)
	m.EXPECT().SaveRefreshToken(mock.Anything, "rt-new", store.SourceRotation).Return(nil).Once()

	p := store.NewRefreshTokenSecrets(m)
	require.NoError(t, p.SetSecret(context.Background(), secrets.NameRefreshToken, "rt-new"))

	err := p.SetSecret(context.Background(), secrets.NameClientID, "cid")
	require.Error(t, err)
}

func TestRefreshTokenSecrets_OutranksChain(t *testing.T) {
	t.Parallel()

	m := storeMocks.NewMockStore(t)
	m.EXPECT().LatestRefreshToken(mock.Anything).Return("rotated", nil).Once()

	env := secrets.NewEnvProvider(secrets.WithEnvLookup(func(k string) (string, bool) {
		if k == "CONCUR_REFRESH_TOKEN" {
			return "provisioned", true
		}
		return "", false
	}))
	chain := secrets.NewChain(nil, store.NewRefreshTokenSecrets(m), env)

	got, err := chain.Secret(context.Background(), secrets.NameRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got)
}

func TestMigrationNames(t *testing.T) {
	t.Parallel()

	names, err := store.MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_initial_schema.sql", names[0])
	assert.IsIncreasing(t, names)
}
