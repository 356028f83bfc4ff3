package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/sasaft/core/receipt"
)

const sample = `
host_addr: 0.0.0.0:4000
address: 3
asset_number: 77
whitelist: [10.0.0.1, 10.0.0.2]
features:
  in_house_to_game: true
  bonus_to_game: true
  transfer_limit: 5000
receipt:
  location: Main hall
  in_house: [Thank you]
`

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.True(t, cfg.Features().InHouseToGame)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load([]string{"-config=" + writeConfig(t, sample)})
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:4000", cfg.HostAddr)
	require.EqualValues(t, 3, cfg.Address)
	require.EqualValues(t, 77, cfg.AssetNumber)
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Whitelist)
	require.True(t, cfg.Features().BonusToGame)
	require.EqualValues(t, 5000, cfg.Features().TransferLimit)
	// untouched keys keep their defaults
	require.Equal(t, "./data", cfg.DataDir)

	defaults := cfg.ReceiptDefaults()
	require.Equal(t, "Main hall", defaults[receipt.Location])
	require.Equal(t, "Thank you", defaults[receipt.InHouseLine1])
}

func TestFlagsOverrideYAML(t *testing.T) {
	path := writeConfig(t, sample)
	cfg, err := Load([]string{"-config", path, "-asset=9", "-whitelist=1.1.1.1", "-bonus=false"})
	require.NoError(t, err)

	require.EqualValues(t, 9, cfg.AssetNumber)
	require.Equal(t, []string{"1.1.1.1"}, cfg.Whitelist)
	require.False(t, cfg.Features().BonusToGame)
	require.Equal(t, "0.0.0.0:4000", cfg.HostAddr)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load([]string{"-address=200"})
	require.Error(t, err)

	_, err = Load([]string{"-loglevel=loud"})
	require.Error(t, err)

	_, err = Load([]string{"-config=" + filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)

	_, err = Load([]string{"-config=" + writeConfig(t, "address: [")})
	require.Error(t, err)
}
