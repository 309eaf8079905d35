// Package config loads publisher settings: built-in defaults, then an
// optional YAML file, then the environment (including a .env file).
package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig         = "GRC20_CONFIG"
	EnvWalletAddress  = "WALLET_ADDRESS"
	EnvPrivateKey     = "PRIVATE_KEY"
	EnvSpaceID        = "SPACE_ID"
	EnvPermitsSpaceID = "PERMITS_SPACE_ID"
	EnvRPCURL         = "RPC_URL"
	EnvAPIURL         = "API_URL"
	EnvIPFSURL        = "IPFS_URL"
	EnvBrowserURL     = "BROWSER_URL"
	EnvDataDir        = "DATA_DIR"
	EnvLogLevel       = "LOG_LEVEL"
)

// Network describes the chain and the services around it.
type Network struct {
	Name           string        `yaml:"name"`
	ChainID        int64         `yaml:"chain_id"`
	RPCURL         string        `yaml:"rpc_url"`
	APIURL         string        `yaml:"api_url"`
	IPFSURL        string        `yaml:"ipfs_url"`
	BrowserURL     string        `yaml:"browser_url"`
	GasLimit       uint64        `yaml:"gas_limit"`
	MaxFeeGwei     float64       `yaml:"max_fee_gwei"`
	MaxTipGwei     float64       `yaml:"max_tip_gwei"`
	ReceiptPoll    time.Duration `yaml:"receipt_poll"`
	ReceiptTimeout time.Duration `yaml:"receipt_timeout"`
}

// Wallet holds the author address. The private key is only ever read from
// the environment.
type Wallet struct {
	Address    string `yaml:"address"`
	PrivateKey string `yaml:"-"`
}

// Spaces maps record kinds to target space IDs.
type Spaces struct {
	Deeds   string `yaml:"deeds"`
	Permits string `yaml:"permits"`
}

type Batch struct {
	Size  int           `yaml:"size"`
	Delay time.Duration `yaml:"delay"`
}

type HTTP struct {
	Retries int           `yaml:"retries"`
	Timeout time.Duration `yaml:"timeout"`
}

// Storage selects where entity IDs and archived edits live. Backend is
// "file" for the JSON registry or "badger".
type Storage struct {
	Backend  string `yaml:"backend"`
	Registry string `yaml:"registry"`
	DataDir  string `yaml:"data_dir"`
	Profile  string `yaml:"profile"`
}

type Inputs struct {
	Deeds     string `yaml:"deeds"`
	Permits   string `yaml:"permits"`
	Addresses string `yaml:"addresses"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Network  Network `yaml:"network"`
	Wallet   Wallet  `yaml:"wallet"`
	Spaces   Spaces  `yaml:"spaces"`
	Batch    Batch   `yaml:"batch"`
	HTTP     HTTP    `yaml:"http"`
	Storage  Storage `yaml:"storage"`
	Inputs   Inputs  `yaml:"inputs"`
	Server   Server  `yaml:"server"`
	LogLevel string  `yaml:"log_level"`
}

// Default returns the testnet configuration.
func Default() *Config {
	return &Config{
		Network: Network{
			Name:           "TESTNET",
			ChainID:        19411,
			RPCURL:         "https://rpc-geo-test-zc16z3tcvf.t.conduit.xyz/",
			APIURL:         "https://api-testnet.grc-20.thegraph.com",
			IPFSURL:        "https://api.thegraph.com/ipfs",
			BrowserURL:     "https://geogenesis-git-feat-testnet-geo-browser.vercel.app",
			GasLimit:       13_000_000,
			MaxFeeGwei:     0.01,
			MaxTipGwei:     0.01,
			ReceiptPoll:    2 * time.Second,
			ReceiptTimeout: 2 * time.Minute,
		},
		Batch: Batch{Size: 100, Delay: 2 * time.Second},
		HTTP:  HTTP{Retries: 2, Timeout: 30 * time.Second},
		Storage: Storage{
			Backend:  "file",
			Registry: "data/entity-ids.json",
			DataDir:  "data/spaces",
			Profile:  "default",
		},
		Inputs: Inputs{
			Deeds:     "data/input/GRC20_Deeds.csv",
			Permits:   "data/input/permits.csv",
			Addresses: "data/mapping/property-addresses.json",
		},
		Server:   Server{Addr: ":8080"},
		LogLevel: "info",
	}
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load builds the configuration from defaults, the YAML file at path (or
// $GRC20_CONFIG when path is empty; no file is fine) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: decode yaml %s: %v", errors.ErrInvalidInput, path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. Empty variables are
// ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Wallet.Address, EnvWalletAddress)
	set(&c.Wallet.PrivateKey, EnvPrivateKey)
	set(&c.Spaces.Deeds, EnvSpaceID)
	set(&c.Spaces.Permits, EnvPermitsSpaceID)
	set(&c.Network.RPCURL, EnvRPCURL)
	set(&c.Network.APIURL, EnvAPIURL)
	set(&c.Network.IPFSURL, EnvIPFSURL)
	set(&c.Network.BrowserURL, EnvBrowserURL)
	set(&c.Storage.DataDir, EnvDataDir)
	set(&c.LogLevel, EnvLogLevel)

	if v := strings.TrimSpace(getenv("CHAIN_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: CHAIN_ID: %v", errors.ErrInvalidInput, err)
		}
		c.Network.ChainID = id
	}
	return nil
}

// Validate checks values that would break every command.
func (c *Config) Validate() error {
	switch {
	case c.Network.ChainID <= 0:
		return fmt.Errorf("%w: chain_id must be positive", errors.ErrInvalidInput)
	case c.Network.GasLimit == 0:
		return fmt.Errorf("%w: gas_limit must be positive", errors.ErrInvalidInput)
	case c.Network.MaxFeeGwei < 0 || c.Network.MaxTipGwei < 0:
		return fmt.Errorf("%w: fees must not be negative", errors.ErrInvalidInput)
	case c.Network.MaxTipGwei > c.Network.MaxFeeGwei:
		return fmt.Errorf("%w: max_tip_gwei exceeds max_fee_gwei", errors.ErrInvalidInput)
	case c.Batch.Size < 0 || c.Batch.Delay < 0:
		return fmt.Errorf("%w: batch size and delay must not be negative", errors.ErrInvalidInput)
	}
	switch c.Storage.Backend {
	case "file", "badger":
	default:
		return fmt.Errorf("%w: unknown storage backend %q", errors.ErrInvalidInput, c.Storage.Backend)
	}
	return nil
}

// SpaceFor returns the target space of a record kind ("deed" or "permit").
func (c *Config) SpaceFor(kind string) string {
	switch kind {
	case "deed", "deeds":
		return c.Spaces.Deeds
	case "permit", "permits":
		return c.Spaces.Permits
	}
	return ""
}

// SetSpace overrides the target space of a record kind.
func (c *Config) SetSpace(kind, spaceID string) {
	switch kind {
	case "deed", "deeds":
		c.Spaces.Deeds = spaceID
	case "permit", "permits":
		c.Spaces.Permits = spaceID
	}
}

// RequirePublish reports every setting missing to publish kind.
func (c *Config) RequirePublish(kind string) error {
	var missing []string
	if c.Wallet.Address == "" {
		missing = append(missing, EnvWalletAddress)
	}
	if c.Wallet.PrivateKey == "" {
		missing = append(missing, EnvPrivateKey)
	}
	if c.SpaceFor(kind) == "" {
		if kind == "permit" || kind == "permits" {
			missing = append(missing, EnvPermitsSpaceID)
		} else {
			missing = append(missing, EnvSpaceID)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errors.ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// GweiToWei converts a gwei amount to wei, rounding down. The amount is
// taken as the shortest decimal that round-trips the float.
func GweiToWei(gwei float64) *big.Int {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(gwei, 'f', -1, 64))
	if !ok {
		return new(big.Int)
	}
	r.Mul(r, big.NewRat(1_000_000_000, 1))
	return new(big.Int).Quo(r.Num(), r.Denom())
}
