// Treasuryd manages the account store backing a treasury host:
// inspecting state, deriving the program's well-known addresses, and
// exporting or importing compressed snapshots.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zledger/treasury/pkg/programs/treasury"
	"github.com/zledger/treasury/pkg/store"
	"github.com/zledger/treasury/pkg/types"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "dev"
)

// Configuration flags
var (
	configFile     = flag.String("config", "/etc/treasuryd/config.json", "Path to JSON configuration file")
	dataDir        = flag.String("data-dir", "", "Data directory for the account store (:memory: for in-memory)")
	logLevel       = flag.String("log-level", "", "Log level: debug, info, warn, error")
	exportSnapshot = flag.String("export-snapshot", "", "Write a snapshot of the store to this file and exit")
	importSnapshot = flag.String("import-snapshot", "", "Restore the store from this snapshot file and exit")
	showStateRoot  = flag.Bool("state-root", false, "Print the account state root and exit")
	deriveProgram  = flag.String("derive", "", "Print the well-known PDAs for this program id (base58) and exit")
	showVersion    = flag.Bool("version", false, "Print version and exit")
)

// Config represents the JSON configuration file structure.
type Config struct {
	General GeneralConfig `json:"general"`
}

// GeneralConfig holds general application settings.
type GeneralConfig struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataDir:  "/var/lib/treasuryd",
			LogLevel: "info",
		},
	}
}

// loadConfig loads configuration from the specified JSON file.
// If the file doesn't exist, it returns the default configuration.
// CLI flags override config file values when explicitly set.
func loadConfig(configPath string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// applyConfigWithCLIOverrides applies config values unless the
// corresponding CLI flag was explicitly set.
func applyConfigWithCLIOverrides(cfg Config) {
	flagSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagSet[f.Name] = true
	})

	if !flagSet["data-dir"] {
		*dataDir = cfg.General.DataDir
	}
	if !flagSet["log-level"] {
		*logLevel = cfg.General.LogLevel
	}
}

// newLogger builds a production zap logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// openStore opens the configured account store.
func openStore(dir string) (store.Store, error) {
	if dir == ":memory:" {
		return store.NewMemoryStore(), nil
	}
	path := dir + "/accounts"
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.NewBadgerStore(path)
}

func runDerive(programBase58 string) error {
	programID, err := types.PubkeyFromBase58(programBase58)
	if err != nil {
		return fmt.Errorf("invalid program id: %w", err)
	}
	fmt.Printf("program:        %s\n", programID)
	fmt.Printf("treasury state: %s\n", treasury.TreasuryStatePDA(programID))
	fmt.Printf("multisig state: %s\n", treasury.MultisigStatePDA(programID))
	return nil
}

func runExport(st store.Store, path string, logger *zap.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err := store.WriteSnapshot(st, f); err != nil {
		return fmt.Errorf("snapshot write failed: %w", err)
	}
	logger.Info("snapshot exported",
		zap.String("path", path),
		zap.Uint64("accounts", st.Count()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func runImport(st store.Store, path string, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err := store.ReadSnapshot(st, f); err != nil {
		return fmt.Errorf("snapshot read failed: %w", err)
	}
	logger.Info("snapshot imported",
		zap.String("path", path),
		zap.Uint64("accounts", st.Count()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func runStateRoot(st store.Store) error {
	root, err := store.StateRoot(st)
	if err != nil {
		return err
	}
	fmt.Printf("accounts: %d\n", st.Count())
	fmt.Printf("root:     %s\n", root)
	return nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("treasuryd %s (%s)\n", Version, GitCommit)
		os.Exit(0)
	}

	if *deriveProgram != "" {
		if err := runDerive(*deriveProgram); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyConfigWithCLIOverrides(cfg)

	logger, err := newLogger(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	st, err := openStore(*dataDir)
	if err != nil {
		logger.Fatal("failed to open account store", zap.String("dir", *dataDir), zap.Error(err))
	}
	defer st.Close()
	logger.Info("account store opened",
		zap.String("dir", *dataDir),
		zap.Uint64("accounts", st.Count()))

	switch {
	case *exportSnapshot != "":
		err = runExport(st, *exportSnapshot, logger)
	case *importSnapshot != "":
		err = runImport(st, *importSnapshot, logger)
	case *showStateRoot:
		err = runStateRoot(st)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("operation failed", zap.Error(err))
	}
}
