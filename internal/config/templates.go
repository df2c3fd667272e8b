package config

import (
	"fmt"
	"os"
)

// Template returns a starter px4ctl.toml. Every key is optional; commented
// keys show the shape without overriding the built-in defaults.
func Template() string {
	return configTemplate
}

// WriteTemplate writes the starter config to path. Refuses to clobber an
// existing file unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(configTemplate), 0o600)
}

const configTemplate = `# px4ctl configuration. Unset keys keep their built-in defaults;
# run "px4ctl config show" to see the effective values.

[gcs]
# command = ["/usr/bin/QGroundControl"]
# candidates = ["/home/pilot/QGroundControl.AppImage"]
readiness = "process"
pattern = "QGroundControl"
poll_interval = "1s"
timeout = "30s"

[sitl]
# jar = "/home/pilot/src/PX4-Autopilot/Tools/jMAVSim/out/production/jmavsim_run.jar"
java_flags = ["-Xmx1g"]
jar_args = ["-udp", "127.0.0.1:14560"]
readiness = "port"
proto = "udp"
port = 14550
poll_interval = "2s"
timeout = "60s"

[bridge]
listen = "127.0.0.1:14551"
broker_host = "localhost"
broker_port = 1883
topic = "drone/telemetry"
# username = "telemetry"
# password_file = "/etc/px4ctl/broker.pass"
qos = 1
queue_size = 200
max_rate = 5.0

[patch]
# script_path = "/home/pilot/src/PX4-Autopilot/ROMFS/px4fmu_common/init.d-posix/rcS"
udp_port = 14551

[log]
level = "info"
# file = "/var/log/px4ctl.log"
`
