package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RefreshFunc renews an expired credential set. Implementations call the
// airline's token endpoint; the default registry has no hook and refresh
// fails soft.
type RefreshFunc func(airline string, current Credentials) (Credentials, error)

// sealedEntry is how a configuration lives inside the registry: everything
// in the clear except credential material, which stays sealed until read.
type sealedEntry struct {
	cfg          AirlineConfig // Credentials field zeroed
	sealedKey    string
	sealedSecret string
	expiresAt    *time.Time
}

// Registry owns all per-airline configuration. Credentials are encrypted at
// rest with a key derived from the registry passphrase; decryption is
// transparent to Get callers.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*sealedEntry
	box     *cipherBox
	dir     string
	refresh RefreshFunc
	now     func() time.Time
	logger  zerolog.Logger
}

// NewRegistry builds a registry reading file sources from dir and sealing
// credentials under the passphrase.
func NewRegistry(dir, passphrase string, logger zerolog.Logger) (*Registry, error) {
	box, err := newCipherBox(passphrase)
	if err != nil {
		return nil, err
	}

	return &Registry{
		entries: make(map[string]*sealedEntry),
		box:     box,
		dir:     dir,
		now:     time.Now,
		logger:  logger.With().Str("component", "config").Logger(),
	}, nil
}

// SetRefreshFunc installs the credential refresh hook.
func (r *Registry) SetRefreshFunc(fn RefreshFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh = fn
}

// Load reads an airline's configuration from a single named source,
// validates it and stores it. Violations surface as validation errors, never
// silent defaults.
func (r *Registry) Load(airline string, source Source) (*AirlineConfig, error) {
	var (
		cfg *AirlineConfig
		err error
	)

	switch source {
	case SourceFile:
		cfg, err = loadFromFile(r.dir, airline)
	case SourceEnvironment:
		cfg, err = loadFromEnv(airline)
	case SourceDefault:
		cfg = defaultConfig(airline)
	default:
		return nil, fmt.Errorf("unknown configuration source %q", source)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := r.store(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve loads an airline's configuration trying file, then environment,
// then the synthesized default. A load failure from one source does not
// surface until all fallbacks are exhausted; the default always succeeds, so
// Resolve only errors on validation or sealing failure.
func (r *Registry) Resolve(airline string) (*AirlineConfig, error) {
	if cfg := r.Get(airline); cfg != nil {
		return cfg, nil
	}

	for _, source := range []Source{SourceFile, SourceEnvironment} {
		cfg, err := r.Load(airline, source)
		if err == nil {
			return cfg, nil
		}
		r.logger.Debug().Err(err).Str("airline", airline).Str("source", string(source)).
			Msg("configuration source unavailable")
	}

	return r.Load(airline, SourceDefault)
}

func (r *Registry) store(cfg *AirlineConfig) error {
	sealedKey, err := r.box.seal(cfg.Credentials.APIKey)
	if err != nil {
		return fmt.Errorf("seal credentials for %s: %w", cfg.Airline, err)
	}
	sealedSecret := ""
	if cfg.Credentials.APISecret != "" {
		if sealedSecret, err = r.box.seal(cfg.Credentials.APISecret); err != nil {
			return fmt.Errorf("seal credentials for %s: %w", cfg.Airline, err)
		}
	}

	entry := &sealedEntry{
		cfg:          *cfg,
		sealedKey:    sealedKey,
		sealedSecret: sealedSecret,
		expiresAt:    cfg.Credentials.ExpiresAt,
	}
	entry.cfg.Credentials = Credentials{}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[cfg.Airline] = entry
	return nil
}

// Get returns the decrypted configuration for an airline, or nil when none
// is loaded. Expired credentials trigger the refresh hook; when refresh
// fails the stale configuration is still returned, since degraded service
// beats total failure.
func (r *Registry) Get(airline string) *AirlineConfig {
	r.mu.RLock()
	entry, ok := r.entries[airline]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	creds, err := r.unseal(entry)
	if err != nil {
		r.logger.Error().Err(err).Str("airline", airline).Msg("failed to decrypt credentials")
		return nil
	}

	if creds.Expired(r.now()) {
		if err := r.RefreshCredentials(airline); err != nil {
			r.logger.Warn().Err(err).Str("airline", airline).
				Msg("credential refresh failed, returning stale configuration")
		} else {
			r.mu.RLock()
			entry = r.entries[airline]
			r.mu.RUnlock()
			if renewed, err := r.unseal(entry); err == nil {
				creds = renewed
			}
		}
	}

	cfg := entry.cfg
	cfg.Credentials = creds
	return &cfg
}

func (r *Registry) unseal(entry *sealedEntry) (Credentials, error) {
	key, err := r.box.open(entry.sealedKey)
	if err != nil {
		return Credentials{}, err
	}
	secret := ""
	if entry.sealedSecret != "" {
		if secret, err = r.box.open(entry.sealedSecret); err != nil {
			return Credentials{}, err
		}
	}
	return Credentials{APIKey: key, APISecret: secret, ExpiresAt: entry.expiresAt}, nil
}

// Update applies a partial update, re-validates and bumps Version and
// LastUpdated.
func (r *Registry) Update(airline string, upd Update) error {
	r.mu.RLock()
	entry, ok := r.entries[airline]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no configuration loaded for %s", airline)
	}

	creds, err := r.unseal(entry)
	if err != nil {
		return err
	}

	cfg := entry.cfg
	cfg.Credentials = creds

	if upd.BaseURL != nil {
		cfg.BaseURL = *upd.BaseURL
	}
	if upd.Timeout != nil {
		cfg.Timeout = *upd.Timeout
	}
	if upd.RateLimits != nil {
		cfg.RateLimits = *upd.RateLimits
	}
	if upd.Retry != nil {
		cfg.Retry = *upd.Retry
	}
	if upd.Environment != nil {
		cfg.Environment = *upd.Environment
	}
	if upd.Credentials != nil {
		cfg.Credentials = *upd.Credentials
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.Version = entry.cfg.Version + 1
	cfg.LastUpdated = r.now()
	return r.store(&cfg)
}

// CredentialsExpired reports whether the airline's credentials have passed
// their expiry. Unknown airlines and credentials without expiry report
// false.
func (r *Registry) CredentialsExpired(airline string) bool {
	r.mu.RLock()
	entry, ok := r.entries[airline]
	r.mu.RUnlock()
	if !ok || entry.expiresAt == nil {
		return false
	}
	return !r.now().Before(*entry.expiresAt)
}

// RefreshCredentials runs the refresh hook and stores the renewed
// credentials.
func (r *Registry) RefreshCredentials(airline string) error {
	r.mu.RLock()
	entry, ok := r.entries[airline]
	refresh := r.refresh
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no configuration loaded for %s", airline)
	}
	if refresh == nil {
		return fmt.Errorf("no refresh hook configured")
	}

	creds, err := r.unseal(entry)
	if err != nil {
		return err
	}

	renewed, err := refresh(airline, creds)
	if err != nil {
		return fmt.Errorf("refresh credentials for %s: %w", airline, err)
	}

	cfg := entry.cfg
	cfg.Credentials = renewed
	cfg.Version = entry.cfg.Version + 1
	cfg.LastUpdated = r.now()
	return r.store(&cfg)
}

// Remove drops an airline's configuration.
func (r *Registry) Remove(airline string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, airline)
}

// Airlines lists the airlines with a loaded configuration.
func (r *Registry) Airlines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
