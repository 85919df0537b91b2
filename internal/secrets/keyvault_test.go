package secrets_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/concur-accruals/internal/secrets"
)

// fakeVault is an in-memory KeyVaultClient.
type fakeVault struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func (f *fakeVault) GetSecret(
	_ context.Context,
	name, _ string,
	_ *azsecrets.GetSecretOptions,
) (azsecrets.GetSecretResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return azsecrets.GetSecretResponse{}, f.err
	}
	v, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, &azcore.ResponseError{
			StatusCode: http.StatusNotFound,
			ErrorCode:  "SecretNotFound",
		}
	}
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: &v}}, nil
}

func (f *fakeVault) SetSecret(
	_ context.Context,
	name string,
	params azsecrets.SetSecretParameters,
	_ *azsecrets.SetSecretOptions,
) (azsecrets.SetSecretResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return azsecrets.SetSecretResponse{}, f.err
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[name] = *params.Value
	return azsecrets.SetSecretResponse{}, nil
}

func TestVaultURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://kv-concur.vault.azure.net/", secrets.VaultURL(" kv-concur "))
	assert.Empty(t, secrets.VaultURL(""))
}

func TestNewKeyVaultProvider_RequiresURL(t *testing.T) {
	t.Parallel()

	_, err := secrets.NewKeyVaultProvider(" ", secrets.WithKeyVaultClient(&fakeVault{}))
	require.Error(t, err)
}

func TestKeyVaultProvider_Secret(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{values: map[string]string{
		secrets.NameClientID: "cid",
		"blank":              "",
	}}
	kv, err := secrets.NewKeyVaultProvider("https://kv.example.test/", secrets.WithKeyVaultClient(vault))
	require.NoError(t, err)
	assert.Equal(t, "keyvault", kv.Name())

	tests := []struct {
		name    string
		secret  string
		want    string
		wantErr error
	}{
		{name: "present", secret: secrets.NameClientID, want: "cid"},
		{name: "not found", secret: secrets.NameClientSecret, wantErr: secrets.ErrSecretNotFound},
		{name: "empty value", secret: "blank", wantErr: secrets.ErrSecretNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := kv.Secret(context.Background(), tt.secret)
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

func TestKeyVaultProvider_Unavailable(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{err: &azcore.ResponseError{StatusCode: http.StatusForbidden, ErrorCode: "Forbidden"}}
	kv, err := secrets.NewKeyVaultProvider("https://kv.example.test/", secrets.WithKeyVaultClient(vault))
	require.NoError(t, err)

	_, err = kv.Secret(context.Background(), secrets.NameClientID)
	require.Error(t, err)
	assert.ErrorIs(t, err, secrets.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, secrets.ErrSecretNotFound)

	vault.err = errors.New("no managed identity endpoint")
	err = kv.SetSecret(context.Background(), secrets.NameRefreshToken, "rt")
	assert.ErrorIs(t, err, secrets.ErrStoreUnavailable)
}

func TestKeyVaultProvider_SetSecret(t *testing.T) {
	t.Parallel()

	vault := &fakeVault{}
	kv, err := secrets.NewKeyVaultProvider("https://kv.example.test/", secrets.WithKeyVaultClient(vault))
	require.NoError(t, err)

	require.NoError(t, kv.SetSecret(context.Background(), secrets.NameRefreshToken, "rt-2"))
	got, err := kv.Secret(context.Background(), secrets.NameRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "rt-2", got)
}
