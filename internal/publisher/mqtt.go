// Package publisher pushes derived daily usage records out to Home
// Assistant (HTTP API) and/or an MQTT broker.
package publisher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/wattwise/wattwise/internal/config"
	"github.com/wattwise/wattwise/pkg/models"
)

// Publisher handles publishing to Home Assistant and MQTT
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
}

// New creates a new publisher (supports both MQTT and HA HTTP API)
func New(mqttCfg config.MQTTConfig, topicPrefix string, haCfg config.HAConfig) (*Publisher, error) {
	// Validate HA config if enabled
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	var client mqtt.Client

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		// Configure MQTT client options
		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("wattwise")
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		// Create and connect client
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
	}

	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		haConfig:    haCfg,
	}, nil
}

// usagePayload is the message body for MQTT usage topics.
type usagePayload struct {
	Date           string  `json:"date"`
	ConsumptionKWh float64 `json:"consumption_kwh"`
	Cost           float64 `json:"cost"`
	IsAnomaly      bool    `json:"is_anomaly"`
}

// HAPayload matches the Home Assistant backfill service call data
type HAPayload struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	LastChanged string `json:"last_changed"`
	LastUpdated string `json:"last_updated"`
}

// Publish sends a daily usage record to every configured target: the
// Home Assistant HTTP API as sensor state, the MQTT daily_usage topic,
// and additionally the anomaly topic for flagged days.
func (p *Publisher) Publish(usage models.DailyUsage) error {
	if p.haConfig.Enabled {
		if err := p.publishHA(usage); err != nil {
			return err
		}
	}

	if p.client != nil {
		if err := p.publishMQTT(p.topicPrefix+"/daily_usage", usage); err != nil {
			return err
		}
		if usage.IsAnomaly {
			if err := p.publishMQTT(p.topicPrefix+"/anomaly", usage); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p *Publisher) publishMQTT(topic string, usage models.DailyUsage) error {
	body, err := json.Marshal(usagePayload{
		Date:           usage.Date.Format("2006-01-02"),
		ConsumptionKWh: usage.ConsumptionKWh,
		Cost:           usage.Cost,
		IsAnomaly:      usage.IsAnomaly,
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	if token := p.client.Publish(topic, 0, true, body); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// publishHA sends a usage record to Home Assistant via HTTP API
func (p *Publisher) publishHA(usage models.DailyUsage) error {
	// Build the full API URL (AppDaemon API endpoint)
	apiURL := fmt.Sprintf("%s/api/appdaemon/backfill_state", p.haConfig.URL)

	timestamp := usage.Date.Format(time.RFC3339)

	// Create payload for Home Assistant
	payload := HAPayload{
		EntityID:    p.haConfig.EntityID,
		State:       fmt.Sprintf("%.2f", usage.ConsumptionKWh),
		LastChanged: timestamp,
		LastUpdated: timestamp,
	}

	// Marshal to JSON
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	// Create HTTP request
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	// Send request
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read error response body for debugging
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
