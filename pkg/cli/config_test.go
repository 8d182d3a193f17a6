package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfigActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {PublicID: "pub-default", SecretKey: "sec-default"},
			"staging": {PublicID: "pub-staging", Endpoint: "https://staging.example.com"},
		},
	}

	tests := []struct {
		name         string
		override     string
		wantPublicID string
	}{
		{"uses current profile", "", "pub-default"},
		{"override to staging", "staging", "pub-staging"},
		{"nonexistent profile returns empty", "nonexistent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := cfg.ActiveProfile(tt.override)
			assert.Equal(t, tt.wantPublicID, p.PublicID)
		})
	}
}

func TestSaveAndLoadUserConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &UserConfig{
		CurrentProfile: "work",
		Profiles: map[string]Profile{
			"work": {PublicID: "pub", SecretKey: "sec", Endpoint: "https://example.com"},
		},
	}
	require.NoError(t, SaveUserConfig(cfg))
	assert.Equal(t, filepath.Join(ConfigDir(), "config.yaml"), ConfigPath())

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadUserConfigMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadUserConfig()
	require.Error(t, err)
}
