package bridge

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	connectTimeout      = 10 * time.Second
	publishTimeout      = 5 * time.Second
	disconnectQuiesceMS = 250
)

// connectBroker builds the MQTT client from cfg and waits for the first
// connection. Reconnects after that are the client's job.
func connectBroker(cfg Config) (mqtt.Client, error) {
	scheme := "tcp"
	if cfg.TLS.Enabled {
		scheme = "ssl"
	}
	broker := fmt.Sprintf("%s://%s:%d", scheme, cfg.BrokerHost, cfg.BrokerPort)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	if cfg.Username != "" {
		password, err := readPasswordFile(cfg.PasswordFile)
		if err != nil {
			return nil, err
		}
		opts.SetUsername(cfg.Username)
		opts.SetPassword(password)
	}
	if cfg.TLS.Enabled {
		tlsCfg, err := buildTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("broker connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("broker connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: %s: connect timed out", ErrConnectFailed, broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnectFailed, broker, err)
	}
	return client, nil
}

// brokerPublisher adapts the MQTT client to the publish seam.
func brokerPublisher(client mqtt.Client, cfg Config) func([]byte) error {
	return func(payload []byte) error {
		token := client.Publish(cfg.Topic, cfg.QoS, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			return errors.New("publish timed out")
		}
		return token.Error()
	}
}

// readPasswordFile loads the broker password. Credentials stay out of the
// config file and the process environment.
func readPasswordFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: username set without password file", ErrInvalidConfig)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("bridge: read password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func buildTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	out := &tls.Config{InsecureSkipVerify: cfg.Insecure}
	if strings.TrimSpace(cfg.CAFile) != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("bridge: read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: ca file %s holds no certificates", ErrInvalidConfig, cfg.CAFile)
		}
		out.RootCAs = pool
	}
	if strings.TrimSpace(cfg.CertFile) != "" || strings.TrimSpace(cfg.KeyFile) != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("bridge: load client cert: %w", err)
		}
		out.Certificates = []tls.Certificate{cert}
	}
	return out, nil
}
