// Package config loads px4ctl.toml. Keys present in the file overlay the
// built-in catalog defaults; everything else keeps its default. The effective
// values travel as explicit structs into the stack, bridge and bootscript
// packages.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/AryaMajumder/px4-jmavsim/internal/bridge"
	"github.com/AryaMajumder/px4-jmavsim/internal/stack"
)

// DefaultPath is where Load looks when no config path is given.
const DefaultPath = "px4ctl.toml"

// Config is the effective configuration after defaults and file overlay.
type Config struct {
	GCS    stack.ServiceSpec
	SITL   stack.ServiceSpec
	Bridge bridge.Config
	Patch  PatchConfig
	Log    LogConfig
}

// PatchConfig names the boot script and the port the telemetry stanza adds.
type PatchConfig struct {
	ScriptPath string
	UDPPort    int
	BackupDir  string
}

// LogConfig carries file-level logging overrides. Environment variables and
// flags still win over these.
type LogConfig struct {
	Level string
	File  string
}

// DefaultConfig returns the built-in service catalog: QGroundControl as the
// ground station, the jMAVSim jar as the simulator, and bridge/patch settings
// that agree on the second telemetry port.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	logDir := filepath.Join(os.TempDir(), "px4ctl")
	return Config{
		GCS: stack.ServiceSpec{
			Name: "gcs",
			Candidates: []string{
				filepath.Join(home, "QGroundControl.AppImage"),
				"/usr/local/bin/QGroundControl",
				"/usr/bin/QGroundControl",
			},
			LogPath:      filepath.Join(logDir, "gcs.log"),
			Readiness:    stack.ReadinessSpec{Kind: stack.ReadinessProcess, Pattern: "QGroundControl"},
			PollInterval: time.Second,
			Timeout:      30 * time.Second,
		},
		SITL: stack.ServiceSpec{
			Name:         "sitl",
			Jar:          filepath.Join(home, "src/PX4-Autopilot/Tools/jMAVSim/out/production/jmavsim_run.jar"),
			JavaFlags:    []string{"-Xmx1g"},
			JarArgs:      []string{"-udp", "127.0.0.1:14560"},
			LogPath:      filepath.Join(logDir, "sitl.log"),
			Readiness:    stack.ReadinessSpec{Kind: stack.ReadinessPort, Proto: "udp", Port: 14550},
			PollInterval: 2 * time.Second,
			Timeout:      60 * time.Second,
		},
		Bridge: bridge.DefaultConfig(),
		Patch: PatchConfig{
			ScriptPath: filepath.Join(home, "src/PX4-Autopilot/ROMFS/px4fmu_common/init.d-posix/rcS"),
			UDPPort:    14551,
		},
	}
}

// fileConfig mirrors px4ctl.toml. Durations are Go duration strings so the
// file reads "30s" instead of nanosecond counts.
type fileConfig struct {
	GCS    serviceSection `toml:"gcs"`
	SITL   serviceSection `toml:"sitl"`
	Bridge bridgeSection  `toml:"bridge"`
	Patch  patchSection   `toml:"patch"`
	Log    logSection     `toml:"log"`
}

type serviceSection struct {
	Command      []string          `toml:"command,omitempty"`
	Candidates   []string          `toml:"candidates,omitempty"`
	Jar          string            `toml:"jar,omitempty"`
	JavaFlags    []string          `toml:"java_flags,omitempty"`
	JarArgs      []string          `toml:"jar_args,omitempty"`
	Dir          string            `toml:"dir,omitempty"`
	LogPath      string            `toml:"log_path,omitempty"`
	Env          map[string]string `toml:"env,omitempty"`
	Readiness    string            `toml:"readiness,omitempty"`
	Pattern      string            `toml:"pattern,omitempty"`
	Proto        string            `toml:"proto,omitempty"`
	Port         int               `toml:"port,omitempty"`
	PollInterval string            `toml:"poll_interval,omitempty"`
	Timeout      string            `toml:"timeout,omitempty"`
}

type bridgeSection struct {
	Listen       string  `toml:"listen,omitempty"`
	BrokerHost   string  `toml:"broker_host,omitempty"`
	BrokerPort   int     `toml:"broker_port,omitempty"`
	ClientID     string  `toml:"client_id,omitempty"`
	Topic        string  `toml:"topic,omitempty"`
	Username     string  `toml:"username,omitempty"`
	PasswordFile string  `toml:"password_file,omitempty"`
	QoS          int     `toml:"qos"`
	QueueSize    int     `toml:"queue_size,omitempty"`
	MaxRate      float64 `toml:"max_rate,omitempty"`
	MetricsAddr  string  `toml:"metrics_addr,omitempty"`
	TLS          bool    `toml:"tls,omitempty"`
	TLSCAFile    string  `toml:"tls_ca_file,omitempty"`
	TLSCertFile  string  `toml:"tls_cert_file,omitempty"`
	TLSKeyFile   string  `toml:"tls_key_file,omitempty"`
	TLSInsecure  bool    `toml:"tls_insecure,omitempty"`
}

type patchSection struct {
	ScriptPath string `toml:"script_path,omitempty"`
	UDPPort    int    `toml:"udp_port,omitempty"`
	BackupDir  string `toml:"backup_dir,omitempty"`
}

type logSection struct {
	Level string `toml:"level,omitempty"`
	File  string `toml:"file,omitempty"`
}

// Load reads path and overlays its keys onto the defaults. An empty path
// falls back to DefaultPath when that file exists, otherwise the defaults
// come back untouched.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	path = strings.TrimSpace(path)
	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			return cfg, nil
		}
		path = DefaultPath
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if err := applyServiceSection(&cfg.GCS, raw.GCS, meta, "gcs"); err != nil {
		return Config{}, err
	}
	if err := applyServiceSection(&cfg.SITL, raw.SITL, meta, "sitl"); err != nil {
		return Config{}, err
	}
	applyBridgeSection(&cfg.Bridge, raw.Bridge, meta)
	applyPatchSection(&cfg.Patch, raw.Patch, meta)
	applyLogSection(&cfg.Log, raw.Log, meta)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyServiceSection(spec *stack.ServiceSpec, raw serviceSection, meta toml.MetaData, section string) error {
	if meta.IsDefined(section, "command") {
		spec.Command = raw.Command
	}
	if meta.IsDefined(section, "candidates") {
		spec.Candidates = raw.Candidates
	}
	if meta.IsDefined(section, "jar") {
		spec.Jar = strings.TrimSpace(raw.Jar)
	}
	if meta.IsDefined(section, "java_flags") {
		spec.JavaFlags = raw.JavaFlags
	}
	if meta.IsDefined(section, "jar_args") {
		spec.JarArgs = raw.JarArgs
	}
	if meta.IsDefined(section, "dir") {
		spec.Dir = strings.TrimSpace(raw.Dir)
	}
	if meta.IsDefined(section, "log_path") {
		spec.LogPath = strings.TrimSpace(raw.LogPath)
	}
	if meta.IsDefined(section, "env") {
		spec.Env = raw.Env
	}
	if meta.IsDefined(section, "readiness") {
		kind, err := parseReadinessKind(raw.Readiness)
		if err != nil {
			return fmt.Errorf("config [%s]: %w", section, err)
		}
		spec.Readiness.Kind = kind
	}
	if meta.IsDefined(section, "pattern") {
		spec.Readiness.Pattern = strings.TrimSpace(raw.Pattern)
	}
	if meta.IsDefined(section, "proto") {
		spec.Readiness.Proto = strings.TrimSpace(raw.Proto)
	}
	if meta.IsDefined(section, "port") {
		spec.Readiness.Port = raw.Port
	}
	if meta.IsDefined(section, "poll_interval") {
		d, err := parseDuration("poll_interval", raw.PollInterval)
		if err != nil {
			return fmt.Errorf("config [%s]: %w", section, err)
		}
		spec.PollInterval = d
	}
	if meta.IsDefined(section, "timeout") {
		d, err := parseDuration("timeout", raw.Timeout)
		if err != nil {
			return fmt.Errorf("config [%s]: %w", section, err)
		}
		spec.Timeout = d
	}
	return nil
}

func applyBridgeSection(cfg *bridge.Config, raw bridgeSection, meta toml.MetaData) {
	if meta.IsDefined("bridge", "listen") {
		cfg.ListenAddr = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("bridge", "broker_host") {
		cfg.BrokerHost = strings.TrimSpace(raw.BrokerHost)
	}
	if meta.IsDefined("bridge", "broker_port") {
		cfg.BrokerPort = raw.BrokerPort
	}
	if meta.IsDefined("bridge", "client_id") {
		cfg.ClientID = strings.TrimSpace(raw.ClientID)
	}
	if meta.IsDefined("bridge", "topic") {
		cfg.Topic = strings.TrimSpace(raw.Topic)
	}
	if meta.IsDefined("bridge", "username") {
		cfg.Username = strings.TrimSpace(raw.Username)
	}
	if meta.IsDefined("bridge", "password_file") {
		cfg.PasswordFile = strings.TrimSpace(raw.PasswordFile)
	}
	if meta.IsDefined("bridge", "qos") {
		cfg.QoS = byte(raw.QoS)
	}
	if meta.IsDefined("bridge", "queue_size") {
		cfg.QueueSize = raw.QueueSize
	}
	if meta.IsDefined("bridge", "max_rate") {
		cfg.MaxRate = raw.MaxRate
	}
	if meta.IsDefined("bridge", "metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("bridge", "tls") {
		cfg.TLS.Enabled = raw.TLS
	}
	if meta.IsDefined("bridge", "tls_ca_file") {
		cfg.TLS.CAFile = strings.TrimSpace(raw.TLSCAFile)
	}
	if meta.IsDefined("bridge", "tls_cert_file") {
		cfg.TLS.CertFile = strings.TrimSpace(raw.TLSCertFile)
	}
	if meta.IsDefined("bridge", "tls_key_file") {
		cfg.TLS.KeyFile = strings.TrimSpace(raw.TLSKeyFile)
	}
	if meta.IsDefined("bridge", "tls_insecure") {
		cfg.TLS.Insecure = raw.TLSInsecure
	}
}

func applyPatchSection(cfg *PatchConfig, raw patchSection, meta toml.MetaData) {
	if meta.IsDefined("patch", "script_path") {
		cfg.ScriptPath = strings.TrimSpace(raw.ScriptPath)
	}
	if meta.IsDefined("patch", "udp_port") {
		cfg.UDPPort = raw.UDPPort
	}
	if meta.IsDefined("patch", "backup_dir") {
		cfg.BackupDir = strings.TrimSpace(raw.BackupDir)
	}
}

func applyLogSection(cfg *LogConfig, raw logSection, meta toml.MetaData) {
	if meta.IsDefined("log", "level") {
		cfg.Level = strings.TrimSpace(raw.Level)
	}
	if meta.IsDefined("log", "file") {
		cfg.File = strings.TrimSpace(raw.File)
	}
}

// validate covers config-level coherence only. The stack, bridge and
// bootscript packages check their own inputs again at use time.
func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Patch.ScriptPath) == "" {
		return fmt.Errorf("patch config missing script_path")
	}
	if cfg.Patch.UDPPort <= 0 || cfg.Patch.UDPPort > 65535 {
		return fmt.Errorf("patch config udp_port %d out of range", cfg.Patch.UDPPort)
	}
	return nil
}
