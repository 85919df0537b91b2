package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

const defaultKeyVaultTimeout = 10 * time.Second

// KeyVaultClient is the subset of *azsecrets.Client used here.
type KeyVaultClient interface {
	GetSecret(
		ctx context.Context,
		name string,
		version string,
		options *azsecrets.GetSecretOptions,
	) (azsecrets.GetSecretResponse, error)
	SetSecret(
		ctx context.Context,
		name string,
		parameters azsecrets.SetSecretParameters,
		options *azsecrets.SetSecretOptions,
	) (azsecrets.SetSecretResponse, error)
}

// KeyVaultProvider reads secrets from Azure Key Vault.
type KeyVaultProvider struct {
	vaultURL string
	client   KeyVaultClient
	timeout  time.Duration
}

// KeyVaultOption configures the KeyVaultProvider.
type KeyVaultOption func(*KeyVaultProvider)

// WithKeyVaultClient injects a client instead of building one from the
// default Azure credential chain.
func WithKeyVaultClient(c KeyVaultClient) KeyVaultOption {
	return func(p *KeyVaultProvider) {
		p.client = c
	}
}

// WithKeyVaultTimeout bounds each Key Vault call.
func WithKeyVaultTimeout(d time.Duration) KeyVaultOption {
	return func(p *KeyVaultProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// VaultURL builds the vault URL from a vault name.
func VaultURL(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return "https://" + name + ".vault.azure.net/"
}

// NewKeyVaultProvider creates a provider for vaultURL authenticating with
// the default Azure credential chain (managed identity, environment, CLI).
func NewKeyVaultProvider(vaultURL string, opts ...KeyVaultOption) (*KeyVaultProvider, error) {
	if strings.TrimSpace(vaultURL) == "" {
		return nil, errors.New("key vault URL is required")
	}
	p := &KeyVaultProvider{
		vaultURL: vaultURL,
		timeout:  defaultKeyVaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating azure credential: %w", err)
		}
		client, err := azsecrets.NewClient(vaultURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("creating key vault client: %w", err)
		}
		p.client = client
	}
	return p, nil
}

// Name implements Provider.
func (*KeyVaultProvider) Name() string { return "keyvault" }

// VaultURL returns the configured vault URL.
func (p *KeyVaultProvider) VaultURL() string { return p.vaultURL }

// Secret implements Provider using the latest secret version.
func (p *KeyVaultProvider) Secret(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", classifyKeyVaultError(name, err)
	}
	if resp.Value == nil || strings.TrimSpace(*resp.Value) == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return *resp.Value, nil
}

// SetSecret writes a new version of name.
func (p *KeyVaultProvider) SetSecret(ctx context.Context, name, value string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.client.SetSecret(ctx, name, azsecrets.SetSecretParameters{Value: &value}, nil)
	if err != nil {
		return classifyKeyVaultError(name, err)
	}
	return nil
}

func classifyKeyVaultError(name string, err error) error {
	var re *azcore.ResponseError
	if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, name, err)
}
