// Package cli wires the grc20 command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/PaulieB14/grc20-publisher/internal/config"
	"github.com/PaulieB14/grc20-publisher/internal/logging"
	"github.com/PaulieB14/grc20-publisher/internal/manager"
	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/metrics"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
	"github.com/PaulieB14/grc20-publisher/pkg/store"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded the configuration.
type app struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  zerolog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	stores  *manager.StoreManager

	stdout io.Writer
	stderr io.Writer
}

// Execute runs the grc20 command with args and releases every store it
// opened, whether or not the command succeeded.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr, logger: zerolog.Nop()}
	defer a.close()

	rc := newRootCommand(a)
	rc.SetArgs(args)
	return rc.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	rc := &cobra.Command{
		Use:   "grc20",
		Short: "Publish deed and permit records to a GRC-20 knowledge graph.",
		Long: `grc20 turns deed and permit CSV records into knowledge-graph ops,
uploads them as an edit to IPFS, fetches calldata for the edit and sends
the transaction that anchors it on chain.

Settings come from built-in testnet defaults, an optional YAML file
(--config or $GRC20_CONFIG) and the environment, including a .env file.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	rc.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	rc.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rc.AddCommand(newTransformCommand(a))
	rc.AddCommand(newPublishCommand(a))
	rc.AddCommand(newOntologyCommand(a))
	rc.AddCommand(newRenameCommand(a))
	rc.AddCommand(newIDsCommand(a))
	rc.AddCommand(newReportCommand(a))
	rc.AddCommand(newServeCommand(a))

	rc.SetOut(a.stdout)
	rc.SetErr(a.stderr)
	return rc
}

func (a *app) init() error {
	config.LoadDotEnv()
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.NewWithWriter(a.stderr, cfg.LogLevel)
	a.reg = prometheus.NewRegistry()
	a.metrics = metrics.New(a.reg)
	return nil
}

func (a *app) close() {
	if a.stores != nil {
		a.stores.CloseAll()
	}
}

// storeManager opens the per-space stores under the data directory.
func (a *app) storeManager() *manager.StoreManager {
	if a.stores == nil {
		a.stores = manager.NewStoreManager(a.cfg.Storage.DataDir, a.memoryProfile(), false)
	}
	return a.stores
}

func (a *app) memoryProfile() manager.MemoryProfile {
	switch a.cfg.Storage.Profile {
	case string(manager.MemoryProfileLow), store.ProfileLowMem:
		return manager.MemoryProfileLow
	}
	return manager.MemoryProfileDefault
}

// registryFor opens the entity registry used for spaceID: the JSON sidecar
// file or the space's Badger store, depending on the storage backend.
func (a *app) registryFor(spaceID string) (*registry.Registry, error) {
	switch a.cfg.Storage.Backend {
	case "badger":
		if spaceID == "" {
			return nil, fmt.Errorf("%w: the badger backend needs a space id", errors.ErrMissingConfig)
		}
		st, err := a.storeManager().GetStore(spaceID)
		if err != nil {
			return nil, err
		}
		// The manager owns the store; closing the registry must not close it.
		return registry.New(unclosable{st}), nil
	default:
		fs, err := registry.OpenFile(a.cfg.Storage.Registry)
		if err != nil {
			return nil, err
		}
		return registry.New(fs), nil
	}
}

type unclosable struct{ *store.Store }

func (unclosable) Close() error { return nil }

// recordKind maps a command argument to the record kind it names.
func recordKind(arg string) (string, error) {
	switch arg {
	case "deed", "deeds":
		return "deed", nil
	case "permit", "permits":
		return "permit", nil
	}
	return "", fmt.Errorf("%w: unknown record kind %q (want deeds or permits)", errors.ErrInvalidInput, arg)
}
