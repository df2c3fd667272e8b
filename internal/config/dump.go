package config

import (
	"fmt"

	tomlv2 "github.com/pelletier/go-toml/v2"

	"github.com/AryaMajumder/px4-jmavsim/internal/stack"
)

// Render prints the effective configuration as TOML, durations spelled as
// strings. The output loads back through Load unchanged.
func Render(cfg Config) (string, error) {
	out, err := tomlv2.Marshal(mirror(cfg))
	if err != nil {
		return "", fmt.Errorf("config render failed: %w", err)
	}
	return string(out), nil
}

func mirror(cfg Config) fileConfig {
	return fileConfig{
		GCS:  mirrorService(cfg.GCS),
		SITL: mirrorService(cfg.SITL),
		Bridge: bridgeSection{
			Listen:       cfg.Bridge.ListenAddr,
			BrokerHost:   cfg.Bridge.BrokerHost,
			BrokerPort:   cfg.Bridge.BrokerPort,
			ClientID:     cfg.Bridge.ClientID,
			Topic:        cfg.Bridge.Topic,
			Username:     cfg.Bridge.Username,
			PasswordFile: cfg.Bridge.PasswordFile,
			QoS:          int(cfg.Bridge.QoS),
			QueueSize:    cfg.Bridge.QueueSize,
			MaxRate:      cfg.Bridge.MaxRate,
			MetricsAddr:  cfg.Bridge.MetricsAddr,
			TLS:          cfg.Bridge.TLS.Enabled,
			TLSCAFile:    cfg.Bridge.TLS.CAFile,
			TLSCertFile:  cfg.Bridge.TLS.CertFile,
			TLSKeyFile:   cfg.Bridge.TLS.KeyFile,
			TLSInsecure:  cfg.Bridge.TLS.Insecure,
		},
		Patch: patchSection{
			ScriptPath: cfg.Patch.ScriptPath,
			UDPPort:    cfg.Patch.UDPPort,
			BackupDir:  cfg.Patch.BackupDir,
		},
		Log: logSection{
			Level: cfg.Log.Level,
			File:  cfg.Log.File,
		},
	}
}

func mirrorService(s stack.ServiceSpec) serviceSection {
	return serviceSection{
		Command:      s.Command,
		Candidates:   s.Candidates,
		Jar:          s.Jar,
		JavaFlags:    s.JavaFlags,
		JarArgs:      s.JarArgs,
		Dir:          s.Dir,
		LogPath:      s.LogPath,
		Env:          s.Env,
		Readiness:    string(s.Readiness.Kind),
		Pattern:      s.Readiness.Pattern,
		Proto:        s.Readiness.Proto,
		Port:         s.Readiness.Port,
		PollInterval: s.PollInterval.String(),
		Timeout:      s.Timeout.String(),
	}
}
