package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KubernetesConfig configures the mounted-volume provider
type KubernetesConfig struct {
	BasePath string
}

type kubernetesProvider struct {
	basePath string
}

func newKubernetesProvider(cfg KubernetesConfig) (provider, error) {
	base := cfg.BasePath
	if base == "" {
		base = "/var/run/secrets/claimguard"
	}

	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("secrets: kubernetes secrets base %s not accessible: %w", base, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets: kubernetes secrets base %s is not a directory", base)
	}

	return &kubernetesProvider{basePath: base}, nil
}

func (k *kubernetesProvider) Name() ProviderType {
	return ProviderKubernetes
}

// Fetch reads a mounted secret. A directory yields one entry per file, a
// single file yields one entry named after it
func (k *kubernetesProvider) Fetch(_ context.Context, ref Reference) (Secret, error) {
	target := filepath.Join(k.basePath, filepath.Clean("/"+ref.Path))
	info, err := os.Stat(target)
	if err != nil {
		return Secret{}, fmt.Errorf("secrets: kubernetes path %s not found: %w", ref.Path, err)
	}

	data := make(map[string]string)
	if !info.IsDir() {
		content, err := os.ReadFile(target)
		if err != nil {
			return Secret{}, err
		}
		data[filepath.Base(target)] = strings.TrimSpace(string(content))
		return Secret{Data: data}, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return Secret{}, err
	}
	for _, entry := range entries {
		// Mounted volumes carry ..data style symlinked dirs
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(target, entry.Name()))
		if err != nil {
			return Secret{}, err
		}
		data[entry.Name()] = strings.TrimSpace(string(content))
	}
	return Secret{Data: data}, nil
}
