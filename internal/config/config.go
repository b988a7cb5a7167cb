package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	domain "github.com/oshokin/bedside-alarm/internal/domain/alarm"
)

// Config holds every setting of the alarm-clock runtime.
type Config struct {
	// LogLevel is the zap level name.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// PollInterval is the fixed period of the state machine loop.
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// Limits are the alarm timing constants.
	Limits domain.Limits `yaml:"limits" envPrefix:"LIMITS_"`
	// Counter selects the durable escalation counter store.
	Counter Counter `yaml:"counter" envPrefix:"COUNTER_"`
	// Clock configures the simulated real-time clock.
	Clock Clock `yaml:"clock" envPrefix:"CLOCK_"`
	// Panel configures the front panel gRPC endpoint.
	Panel Panel `yaml:"panel" envPrefix:"PANEL_"`
	// Suspend selects how standby is performed.
	Suspend Suspend `yaml:"suspend" envPrefix:"SUSPEND_"`
	// AuthorizedTokens lists accepted token UIDs as hex strings.
	AuthorizedTokens []string `yaml:"authorized_tokens" env:"AUTHORIZED_TOKENS" envSeparator:","`
}

// Counter selects the escalation counter backend.
type Counter struct {
	// Kind is "file" or "sqlite".
	Kind string `yaml:"kind" env:"KIND"`
	// Path is the file or database location.
	Path string `yaml:"path" env:"PATH"`
}

// Clock configures the simulated real-time clock.
type Clock struct {
	// StateFile persists the alarm register and the wake cause between boots.
	StateFile string `yaml:"state_file" env:"STATE_FILE"`
	// DefaultAlarm is the HH:MM alarm used before anything was committed.
	DefaultAlarm string `yaml:"default_alarm" env:"DEFAULT_ALARM"`
	// Offset shifts the host time, useful to rehearse an alarm.
	Offset time.Duration `yaml:"offset" env:"OFFSET"`
	// ToneLength is how long one play of the alarm clip lasts.
	ToneLength time.Duration `yaml:"tone_length" env:"TONE_LENGTH"`
}

// Panel configures the front panel gRPC endpoint.
type Panel struct {
	// Address is where the panel server listens and clients connect.
	Address string `yaml:"address" env:"ADDRESS"`
	// Timeout bounds every panel RPC.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Suspend selects how standby is performed.
type Suspend struct {
	// Mode is "simulate", "command" or "exit".
	Mode string `yaml:"mode" env:"MODE"`
	// Command overrides the OS suspend command in "command" mode.
	Command []string `yaml:"command,omitempty" env:"COMMAND" envSeparator:" "`
	// TimerCommand overrides the command used when the alarm timer must wake
	// the host. "{wake_unix}" is replaced by the wake instant.
	TimerCommand []string `yaml:"timer_command,omitempty" env:"TIMER_COMMAND" envSeparator:" "`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"
	// DefaultCounterFilename is the default escalation counter file.
	DefaultCounterFilename = "alarm-clock-counters.json"
	// DefaultClockStateFilename is the default simulated RTC state file.
	DefaultClockStateFilename = "alarm-clock-rtc.yaml"
	// DefaultPanelAddress is the default panel gRPC address.
	DefaultPanelAddress = "127.0.0.1:50061"
	// DefaultTimeout is the default panel RPC timeout.
	DefaultTimeout = 5 * time.Second
	// DefaultPollInterval is the default state machine period.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultAlarm is the alarm used on a fresh clock.
	DefaultAlarm = "07:00"
	// DefaultToneLength is the length of one alarm clip.
	DefaultToneLength = 20 * time.Second
	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// SuspendSimulate keeps the process alive and waits for a simulated wake.
	SuspendSimulate = "simulate"
	// SuspendCommand runs an OS suspend command.
	SuspendCommand = "command"
	// SuspendExit ends the process.
	SuspendExit = "exit"

	// envPrefix prefixes every environment override.
	envPrefix = "ALARM_"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoAuthorizedTokens is returned when no token can dismiss the alarm.
	errNoAuthorizedTokens = errors.New("at least one authorized token is required")
	// errBadToken is returned for a token that is not a hex UID.
	errBadToken = errors.New("token must be a hex encoded UID")
	// errBadCounterKind is returned for an unknown counter backend.
	errBadCounterKind = errors.New("counter kind must be file or sqlite")
	// errBadSuspendMode is returned for an unknown suspend mode.
	errBadSuspendMode = errors.New("suspend mode must be simulate, command or exit")
	// errPollTooSlow is returned when the loop could miss the alarm second.
	errPollTooSlow = errors.New("poll interval must be shorter than one second")
)

// Default returns a configuration with every default applied, except tokens.
func Default() *Config {
	cfg := new(Config)

	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path, applies ALARM_*
// environment overrides and validates the result. A missing default file
// yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := new(Config)

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Run on defaults and environment only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the settings.
//
//nolint:cyclop // A flat list of independent checks.
func Validate(cfg *Config) error {
	applyDefaults(cfg)

	if cfg.PollInterval >= time.Second {
		return errPollTooSlow
	}

	if cfg.Counter.Kind != "file" && cfg.Counter.Kind != "sqlite" {
		return fmt.Errorf("%q: %w", cfg.Counter.Kind, errBadCounterKind)
	}

	switch cfg.Suspend.Mode {
	case SuspendSimulate, SuspendCommand, SuspendExit:
	default:
		return fmt.Errorf("%q: %w", cfg.Suspend.Mode, errBadSuspendMode)
	}

	if _, err := ParseAlarm(cfg.Clock.DefaultAlarm); err != nil {
		return fmt.Errorf("invalid default alarm: %w", err)
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.Panel.Address); err != nil {
		return fmt.Errorf("invalid panel address: %w", err)
	}

	if len(cfg.AuthorizedTokens) == 0 {
		return errNoAuthorizedTokens
	}

	for i, token := range cfg.AuthorizedTokens {
		normalized, err := NormalizeToken(token)
		if err != nil {
			return err
		}

		cfg.AuthorizedTokens[i] = normalized
	}

	return nil
}

// NormalizeToken converts a UID such as "33:ee:b9:12" to "33EEB912".
func NormalizeToken(token string) (string, error) {
	cleaned := strings.ToUpper(strings.NewReplacer(":", "", " ", "", "-", "").Replace(token))

	if cleaned == "" {
		return "", fmt.Errorf("%q: %w", token, errBadToken)
	}

	if _, err := hex.DecodeString(cleaned); err != nil {
		return "", fmt.Errorf("%q: %w", token, errBadToken)
	}

	return cleaned, nil
}

// ParseAlarm parses an HH:MM alarm.
func ParseAlarm(s string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse alarm %q: %w", s, err)
	}

	return t, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	cfg.Limits = cfg.Limits.WithDefaults()

	if cfg.Counter.Kind == "" {
		cfg.Counter.Kind = "file"
	}

	if cfg.Counter.Path == "" {
		cfg.Counter.Path = DefaultCounterFilename
	}

	if cfg.Clock.StateFile == "" {
		cfg.Clock.StateFile = DefaultClockStateFilename
	}

	if cfg.Clock.DefaultAlarm == "" {
		cfg.Clock.DefaultAlarm = DefaultAlarm
	}

	if cfg.Clock.ToneLength <= 0 {
		cfg.Clock.ToneLength = DefaultToneLength
	}

	if cfg.Panel.Address == "" {
		cfg.Panel.Address = DefaultPanelAddress
	}

	if cfg.Panel.Timeout <= 0 {
		cfg.Panel.Timeout = DefaultTimeout
	}

	if cfg.Suspend.Mode == "" {
		cfg.Suspend.Mode = SuspendSimulate
	}
}
