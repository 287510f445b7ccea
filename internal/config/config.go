// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/watcher"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Paths     PathsConfig
	Organizer OrganizerConfig
	Server    ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// PathsConfig holds state file locations. Everything except Categories
// defaults to a file under State.
type PathsConfig struct {
	State      string // default: ~/.autosort
	Rules      string // default: {state}/rules.json
	Categories string // Optional; built-in table when empty
	LogFile    string // default: {state}/organizer_log.txt
	HistoryDB  string // default: {state}/history.db
}

// LockDir is where per-folder lock files live.
func (p PathsConfig) LockDir() string {
	return filepath.Join(p.State, "locks")
}

// OrganizerConfig holds sorting and monitoring configuration.
type OrganizerConfig struct {
	WatchFolder     string // Optional; watched on daemon start
	CollisionPolicy domain.CollisionPolicy
	Debounce        time.Duration // default: 500ms
	MaxWait         time.Duration // default: 5s
	WatcherBackend  string        // auto, inotify, or fsnotify
	IncludeHidden   bool          // organize dotfiles too (default: false)
	RatePerMinute   int           // API organize requests per folder (default: 30)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Enabled        bool
	Host           string        // default: 127.0.0.1
	Port           string        // default: 7878
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 60s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: localhost only)
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("autosort", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Path flags
	statePath := fs.String("state-path", "", "Directory for rules, log, history, and locks (default: ~/.autosort)")
	rulesPath := fs.String("rules-path", "", "Rules file, .json or .yaml (default: {state}/rules.json)")
	categoriesPath := fs.String("categories-path", "", "Category table file, .json or .yaml")
	logFile := fs.String("log-file", "", "Move log (default: {state}/organizer_log.txt)")
	historyDB := fs.String("history-db", "", "History database (default: {state}/history.db)")

	// Organizer flags
	watchFolder := fs.String("watch", "", "Folder to watch on startup")
	collisionPolicy := fs.String("collision-policy", "", "skip, rename, or overwrite (default: skip)")
	debounce := fs.String("debounce", "", "Quiet period before a sweep (default: 500ms)")
	maxWait := fs.String("debounce-max-wait", "", "Longest a sweep is delayed by continuous events (default: 5s)")
	watcherBackend := fs.String("watcher", "", "Watcher backend: auto, inotify, fsnotify (default: auto)")
	includeHidden := fs.String("include-hidden", "", "Organize dotfiles too (default: false)")
	ratePerMinute := fs.String("organize-rate", "", "API organize requests per folder per minute (default: 30)")

	// Server flags
	serverEnabled := fs.String("server", "", "Serve the HTTP API (default: true)")
	serverHost := fs.String("host", "", "Server host (default: 127.0.0.1)")
	serverPort := fs.String("port", "", "Server port (default: 7878)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Paths: PathsConfig{
			State:      getConfigValue(*statePath, "STATE_PATH", ""),
			Rules:      getConfigValue(*rulesPath, "RULES_PATH", ""),
			Categories: getConfigValue(*categoriesPath, "CATEGORIES_PATH", ""),
			LogFile:    getConfigValue(*logFile, "LOG_FILE", ""),
			HistoryDB:  getConfigValue(*historyDB, "HISTORY_DB", ""),
		},
		Organizer: OrganizerConfig{
			WatchFolder:    getConfigValue(*watchFolder, "WATCH_FOLDER", ""),
			WatcherBackend: getConfigValue(*watcherBackend, "WATCHER_BACKEND", watcher.KindAuto),
			IncludeHidden:  getBoolConfigValue(*includeHidden, "INCLUDE_HIDDEN", false),
			RatePerMinute:  getIntConfigValue(*ratePerMinute, "ORGANIZE_RATE_PER_MINUTE", 30),
		},
		Server: ServerConfig{
			Enabled:        getBoolConfigValue(*serverEnabled, "SERVER_ENABLED", true),
			Host:           getConfigValue(*serverHost, "SERVER_HOST", "127.0.0.1"),
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "7878"),
			AllowedOrigins: splitList(getConfigValue("", "SERVER_ALLOWED_ORIGINS", "")),
		},
	}

	policy, err := domain.ParseCollisionPolicy(getConfigValue(*collisionPolicy, "COLLISION_POLICY", string(domain.CollisionSkip)))
	if err != nil {
		return nil, err
	}
	cfg.Organizer.CollisionPolicy = policy

	durations := []struct {
		flag, envKey, def string
		dst               *time.Duration
	}{
		{*debounce, "DEBOUNCE", "500ms", &cfg.Organizer.Debounce},
		{*maxWait, "DEBOUNCE_MAX_WAIT", "5s", &cfg.Organizer.MaxWait},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		value := getConfigValue(d.flag, d.envKey, d.def)
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, value, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Paths.State == "" {
		return errors.New("state path cannot be empty after expansion")
	}

	if _, err := domain.ParseCollisionPolicy(string(c.Organizer.CollisionPolicy)); err != nil {
		return err
	}

	switch c.Organizer.WatcherBackend {
	case watcher.KindAuto, watcher.KindInotify, watcher.KindFsnotify:
	default:
		return fmt.Errorf("invalid watcher backend: %s (must be auto, inotify, or fsnotify)", c.Organizer.WatcherBackend)
	}

	if c.Organizer.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", c.Organizer.Debounce)
	}
	if c.Organizer.MaxWait < c.Organizer.Debounce {
		return fmt.Errorf("debounce max wait (%s) must not be shorter than debounce (%s)", c.Organizer.MaxWait, c.Organizer.Debounce)
	}

	if c.Organizer.RatePerMinute < 0 {
		return fmt.Errorf("organize rate cannot be negative, got %d", c.Organizer.RatePerMinute)
	}

	if c.Server.Enabled {
		port, err := strconv.Atoi(c.Server.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid server port: %s", c.Server.Port)
		}
	}

	// WatchFolder is checked when the session starts, so a folder that
	// appears later only fails that session.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves the state directory first, then derives the
// defaults that live inside it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	state, err := expandPath(c.Paths.State, filepath.Join(homeDir, ".autosort"))
	if err != nil {
		return err
	}
	c.Paths.State = state

	derived := []struct {
		dst  *string
		def  string
		opt  bool
		name string
	}{
		{&c.Paths.Rules, filepath.Join(state, "rules.json"), false, "rules"},
		{&c.Paths.LogFile, filepath.Join(state, "organizer_log.txt"), false, "log file"},
		{&c.Paths.HistoryDB, filepath.Join(state, "history.db"), false, "history db"},
		{&c.Paths.Categories, "", true, "categories"},
		{&c.Organizer.WatchFolder, "", true, "watch folder"},
	}
	for _, d := range derived {
		if d.opt && *d.dst == "" {
			continue
		}
		expanded, err := expandPath(*d.dst, d.def)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = expanded
	}

	return nil
}

// OwnFiles returns the paths autosort itself writes, so that an organize
// run over the state directory leaves them alone.
func (c *Config) OwnFiles() []string {
	return []string{
		c.Paths.Rules,
		c.Paths.LogFile,
		c.Paths.HistoryDB,
		c.Paths.HistoryDB + "-wal",
		c.Paths.HistoryDB + "-shm",
		c.Paths.HistoryDB + "-journal",
	}
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
