package config

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(19411), cfg.Network.ChainID)
	assert.Equal(t, uint64(13_000_000), cfg.Network.GasLimit)
	assert.Equal(t, "TESTNET", cfg.Network.Name)
	assert.Equal(t, 100, cfg.Batch.Size)
	assert.Equal(t, 2*time.Second, cfg.Batch.Delay)
	assert.Equal(t, 2*time.Second, cfg.Network.ReceiptPoll)
	assert.Equal(t, 2*time.Minute, cfg.Network.ReceiptTimeout)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	t.Setenv(EnvRPCURL, "https://rpc.from-env.test")
	t.Setenv(EnvPermitsSpaceID, "permits-space")
	t.Setenv(EnvPrivateKey, "0xabc")

	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "MAINNET", cfg.Network.Name)
	assert.Equal(t, int64(80451), cfg.Network.ChainID)
	assert.Equal(t, "https://rpc.from-env.test", cfg.Network.RPCURL, "env wins over yaml")
	assert.Equal(t, "https://api-testnet.grc-20.thegraph.com", cfg.Network.APIURL, "defaults survive")
	assert.Equal(t, 500*time.Millisecond, cfg.Network.ReceiptPoll)
	assert.Equal(t, 25, cfg.Batch.Size)
	assert.Equal(t, 250*time.Millisecond, cfg.Batch.Delay)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, "deeds-space", cfg.SpaceFor("deed"))
	assert.Equal(t, "permits-space", cfg.SpaceFor("permits"))
	assert.Equal(t, "0xabc", cfg.Wallet.PrivateKey)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromEnvPath(t *testing.T) {
	t.Setenv(EnvConfig, filepath.Join("testdata", "config.yaml"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "MAINNET", cfg.Network.Name)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "unknown.yaml"))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = Load(filepath.Join("testdata", "absent.yaml"))
	assert.Error(t, err)
}

func TestApplyEnvChainID(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{"CHAIN_ID": "80451", EnvSpaceID: " s1 "})))
	assert.Equal(t, int64(80451), cfg.Network.ChainID)
	assert.Equal(t, "s1", cfg.Spaces.Deeds)

	err := cfg.ApplyEnv(env(map[string]string{"CHAIN_ID": "geo"}))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestValidate(t *testing.T) {
	mutations := []func(*Config){
		func(c *Config) { c.Network.ChainID = 0 },
		func(c *Config) { c.Network.GasLimit = 0 },
		func(c *Config) { c.Network.MaxTipGwei = 1 },
		func(c *Config) { c.Batch.Size = -1 },
		func(c *Config) { c.Storage.Backend = "s3" },
	}
	for i, mutate := range mutations {
		cfg := Default()
		mutate(cfg)
		assert.True(t, errors.Is(cfg.Validate(), errors.ErrInvalidInput), "mutation %d", i)
	}
}

func TestRequirePublish(t *testing.T) {
	cfg := Default()
	err := cfg.RequirePublish("deed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingConfig))
	assert.Contains(t, err.Error(), "WALLET_ADDRESS, PRIVATE_KEY, SPACE_ID")

	err = cfg.RequirePublish("permit")
	assert.Contains(t, err.Error(), "PERMITS_SPACE_ID")

	cfg.Wallet = Wallet{Address: "0x1", PrivateKey: "0x2"}
	cfg.SetSpace("deeds", "s")
	assert.NoError(t, cfg.RequirePublish("deed"))
	assert.Error(t, cfg.RequirePublish("permit"))
}

func TestGweiToWei(t *testing.T) {
	assert.Equal(t, 0, GweiToWei(0.01).Cmp(big.NewInt(10_000_000)))
	assert.Equal(t, 0, GweiToWei(1).Cmp(big.NewInt(1_000_000_000)))
	assert.Equal(t, "290000000", GweiToWei(0.29).String())
	assert.Equal(t, "1500000000", GweiToWei(1.5).String())
	assert.Equal(t, "0", GweiToWei(0.0000000001).String())
}
