package secrets

// Status describes the configured secret sources without reading any
// secret values.
type Status struct {
	KeyVaultConfigured bool     `json:"keyvault_configured"          doc:"Whether a Key Vault is configured"`
	KeyVaultURL        string   `json:"keyvault_url,omitempty"       doc:"Key Vault URL"`
	FilePath           string   `json:"file_path,omitempty"          doc:"Local secrets file"`
	Providers          []string `json:"providers"                    doc:"Lookup order"`
	CacheEntries       int      `json:"cache_entries"                doc:"Cached Key Vault secrets"`
	CacheTTLSeconds    int      `json:"cache_ttl_seconds"            doc:"Key Vault cache lifetime"`
}

// Sources bundles the concrete stores behind a Chain for status reporting.
// Any field may be nil.
type Sources struct {
	Chain    *Chain
	Cache    *CachedProvider
	KeyVault *KeyVaultProvider
	File     *FileProvider
}

// Status reports the current configuration.
func (s Sources) Status() Status {
	st := Status{Providers: []string{}}
	if s.Chain != nil {
		st.Providers = s.Chain.Providers()
	}
	if s.KeyVault != nil {
		st.KeyVaultConfigured = true
		st.KeyVaultURL = s.KeyVault.VaultURL()
	}
	if s.File != nil {
		st.FilePath = s.File.Path()
	}
	if s.Cache != nil {
		st.CacheEntries = s.Cache.Len()
		st.CacheTTLSeconds = int(s.Cache.TTL().Seconds())
	}
	return st
}
