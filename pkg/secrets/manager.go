package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/richxcame/claimguard/pkg/logger"
	"go.uber.org/zap"
)

// ProviderType enumerates supported secret backends
type ProviderType string

const (
	ProviderNone       ProviderType = ""
	ProviderAWS        ProviderType = "aws"
	ProviderKubernetes ProviderType = "kubernetes"
)

// SecretType classifies a secret for audit logs
type SecretType string

const (
	SecretDatabase     SecretType = "database_credentials"
	SecretVisionAPIKey SecretType = "vision_api_key"
	SecretStorage      SecretType = "storage_credentials"
)

var (
	ErrProviderNotConfigured = errors.New("secrets: provider not configured")
	ErrInvalidReference      = errors.New("secrets: invalid reference")
	ErrKeyNotFound           = errors.New("secrets: key not found")
)

// Reference points at a secret held by a provider
type Reference struct {
	Name    string
	Path    string
	Key     string
	Version string
	Type    SecretType
}

func (r Reference) cacheKey() string {
	key := r.Path
	if r.Version != "" {
		key += "@" + r.Version
	}
	return key
}

// ParseReference reads "path[@version][#key]". A single-value secret needs no
// key selector
func ParseReference(name string, secretType SecretType, raw string) (Reference, error) {
	ref := Reference{Name: name, Type: secretType}

	clean := strings.TrimSpace(raw)
	if idx := strings.Index(clean, "#"); idx >= 0 {
		ref.Key = strings.TrimSpace(clean[idx+1:])
		clean = clean[:idx]
	}
	if idx := strings.Index(clean, "@"); idx >= 0 {
		ref.Version = strings.TrimSpace(clean[idx+1:])
		clean = clean[:idx]
	}

	ref.Path = strings.Trim(strings.TrimSpace(clean), "/")
	if ref.Path == "" {
		return ref, ErrInvalidReference
	}
	return ref, nil
}

// Secret is a resolved secret payload
type Secret struct {
	Data    map[string]string
	Version string
}

// Value picks one entry. With an empty key, a secret holding exactly one
// entry yields that entry
func (s Secret) Value(key string) (string, bool) {
	if key == "" {
		if len(s.Data) != 1 {
			return "", false
		}
		for _, v := range s.Data {
			return v, v != ""
		}
	}
	v, ok := s.Data[key]
	return v, ok && v != ""
}

// Config configures a Manager
type Config struct {
	Provider   ProviderType
	CacheTTL   time.Duration
	AWS        AWSConfig
	Kubernetes KubernetesConfig
}

type provider interface {
	Name() ProviderType
	Fetch(ctx context.Context, ref Reference) (Secret, error)
}

// Manager resolves secret references against one backend and caches the
// payloads for CacheTTL
type Manager struct {
	provider provider
	cacheTTL time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	secret    Secret
	expiresAt time.Time
}

// NewManager creates a Manager for the configured provider
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	var (
		prov provider
		err  error
	)

	switch cfg.Provider {
	case ProviderNone:
		return nil, ErrProviderNotConfigured
	case ProviderAWS:
		prov, err = newAWSProvider(ctx, cfg.AWS)
	case ProviderKubernetes:
		prov, err = newKubernetesProvider(cfg.Kubernetes)
	default:
		err = fmt.Errorf("secrets: unsupported provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return newManager(prov, cfg.CacheTTL), nil
}

func newManager(prov provider, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{
		provider: prov,
		cacheTTL: ttl,
		now:      time.Now,
		cache:    make(map[string]cachedSecret),
	}
}

// GetString resolves a single secret value
func (m *Manager) GetString(ctx context.Context, ref Reference) (string, error) {
	if ref.Path == "" {
		return "", ErrInvalidReference
	}

	secret, err := m.get(ctx, ref)
	if err != nil {
		logger.Warn("Secret fetch failed",
			zap.String("secret_name", ref.Name),
			zap.String("secret_type", string(ref.Type)),
			zap.String("provider", string(m.provider.Name())),
			zap.Error(err),
		)
		return "", err
	}

	value, ok := secret.Value(ref.Key)
	if !ok {
		return "", fmt.Errorf("%w: %s#%s", ErrKeyNotFound, ref.Path, ref.Key)
	}
	return value, nil
}

func (m *Manager) get(ctx context.Context, ref Reference) (Secret, error) {
	key := ref.cacheKey()

	m.mu.RLock()
	entry, ok := m.cache[key]
	m.mu.RUnlock()
	if ok && m.now().Before(entry.expiresAt) {
		return entry.secret, nil
	}

	secret, err := m.provider.Fetch(ctx, ref)
	if err != nil {
		return Secret{}, err
	}

	m.mu.Lock()
	m.cache[key] = cachedSecret{secret: secret, expiresAt: m.now().Add(m.cacheTTL)}
	m.mu.Unlock()

	logger.Info("Secret fetched",
		zap.String("secret_name", ref.Name),
		zap.String("secret_type", string(ref.Type)),
		zap.String("provider", string(m.provider.Name())),
		zap.String("version", secret.Version),
	)
	return secret, nil
}

// Binding routes a secret reference into a config field. An empty Ref leaves
// the field as configured
type Binding struct {
	Name string
	Type SecretType
	Ref  string
	Dest *string
}

// Apply resolves every binding and writes the values into their fields
func (m *Manager) Apply(ctx context.Context, bindings ...Binding) error {
	for _, b := range bindings {
		if strings.TrimSpace(b.Ref) == "" {
			continue
		}
		ref, err := ParseReference(b.Name, b.Type, b.Ref)
		if err != nil {
			return fmt.Errorf("%s: %w", b.Name, err)
		}
		value, err := m.GetString(ctx, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", b.Name, err)
		}
		*b.Dest = value
	}
	return nil
}
