// Package mqttclient wraps the paho MQTT client with the connection settings
// the ingest loop needs: automatic reconnect and a collision-free client id.
package mqttclient

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Options configure the MQTT connection.
type Options struct {
	BrokerURL string
	// ClientID is suffixed with a random fragment so two processes sharing a
	// config do not evict each other from the broker.
	ClientID string
}

// Client is a connected MQTT client.
type Client struct {
	raw mqtt.Client
}

// New connects to the broker and returns the client. Connection retry is
// enabled, so a broker that is briefly down at startup does not fail the
// process; the initial Connect still reports unrecoverable errors.
func New(opts Options) (*Client, error) {
	if opts.BrokerURL == "" {
		return nil, fmt.Errorf("mqtt: broker URL is required")
	}
	clientID := opts.ClientID
	if clientID == "" {
		clientID = "smartbox"
	}
	clientID = fmt.Sprintf("%s-%s", clientID, uuid.New().String()[:8])

	o := mqtt.NewClientOptions()
	o.AddBroker(opts.BrokerURL)
	o.SetClientID(clientID)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)
	o.SetAutoReconnect(true)
	c := mqtt.NewClient(o)

	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Client{raw: c}, nil
}

// Subscribe registers handler for topic and waits for the broker ack.
func (c *Client) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	token := c.raw.Subscribe(topic, qos, handler)
	token.Wait()
	return token.Error()
}

// Publish sends payload to topic and waits for the broker ack.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	token := c.raw.Publish(topic, qos, retained, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker, allowing 250ms for in-flight work.
func (c *Client) Close() {
	c.raw.Disconnect(250)
}
