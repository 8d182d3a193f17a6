package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"short", "abc", "****"},
		{"exactly_10", "1234567890", "****"},
		{"long_key", "abcdefghijklmnopqrstuvwxyz", "abcd****wxyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.input))
		})
	}
}

func TestMaskConfig(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				PublicID:  "PUBLICID123",
				SecretKey: "SECRETKEYSECRETKEY",
				Endpoint:  "https://api-tournament.numer.ai",
			},
		},
	}

	masked := maskConfig(cfg)

	// the public id is not a secret
	assert.Equal(t, "PUBLICID123", masked.Profiles["default"].PublicID)
	assert.Equal(t, "https://api-tournament.numer.ai", masked.Profiles["default"].Endpoint)
	assert.Contains(t, masked.Profiles["default"].SecretKey, "****")

	// original config not mutated
	assert.Equal(t, "SECRETKEYSECRETKEY", cfg.Profiles["default"].SecretKey)
}

func TestConfigSetAndUseProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	root.SetArgs([]string{"config", "set-profile", "--name", "work",
		"--public-id", "pub", "--secret-key", "sec"})
	require.NoError(t, root.Execute())

	root = newRootCmd()
	root.SetArgs([]string{"config", "use-profile", "work"})
	require.NoError(t, root.Execute())

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "work", cfg.CurrentProfile)
	assert.Equal(t, "pub", cfg.Profiles["work"].PublicID)
	assert.Equal(t, "sec", cfg.Profiles["work"].SecretKey)
}

func TestConfigUseUnknownProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{},
	}))

	root := newRootCmd()
	root.SetArgs([]string{"config", "use-profile", "missing"})
	require.Error(t, root.Execute())
}
