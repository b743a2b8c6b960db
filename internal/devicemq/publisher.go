// Package devicemq relays actuator commands to the on-site greenhouse
// controller over MQTT. The relay is optional: when no broker is
// configured the API still accepts toggles and only writes the realtime
// store.
package devicemq

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Config holds the broker connection settings.
type Config struct {
	BrokerURL     string
	ClientID      string
	Username      string
	Password      string
	TopicPrefix   string
	MaxRetries    int
	RetryInterval time.Duration
}

// Publisher publishes command messages to the controller topics.
type Publisher struct {
	client mqtt.Client
	prefix string
	log    zerolog.Logger
}

// Connect dials the broker, retrying up to MaxRetries times.
func Connect(cfg Config, log zerolog.Logger) (*Publisher, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 2 * time.Second
	}

	opts := mqtt.NewClientOptions().AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		client := mqtt.NewClient(opts)
		token := client.Connect()
		if token.WaitTimeout(cfg.RetryInterval) && token.Error() == nil {
			log.Info().Str("broker", cfg.BrokerURL).Msg("connected to MQTT broker")
			return &Publisher{client: client, prefix: cfg.TopicPrefix, log: log}, nil
		}
		lastErr = token.Error()
		log.Warn().Err(lastErr).Int("attempt", attempt).Msg("MQTT connect failed, retrying")
		time.Sleep(cfg.RetryInterval)
	}
	return nil, fmt.Errorf("connect MQTT broker %s: %w", cfg.BrokerURL, lastErr)
}

// PublishCommand marshals payload as JSON and publishes it under the
// configured topic prefix. A nil Publisher is a no-op so callers can run
// without a broker.
func (p *Publisher) PublishCommand(suffix string, payload any) error {
	if p == nil {
		return nil
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("publish %s: MQTT client not connected", suffix)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	topic := p.prefix + "/" + suffix
	token := p.client.Publish(topic, 0, false, body)
	go func() {
		if token.Wait() && token.Error() != nil {
			p.log.Error().Err(token.Error()).Str("topic", topic).Msg("MQTT publish failed")
		}
	}()
	p.log.Debug().Str("topic", topic).RawJSON("payload", body).Msg("published command")
	return nil
}

// Close disconnects from the broker, allowing inflight messages a short
// grace period.
func (p *Publisher) Close() {
	if p == nil || p.client == nil || !p.client.IsConnected() {
		return
	}
	p.client.Disconnect(250)
}
