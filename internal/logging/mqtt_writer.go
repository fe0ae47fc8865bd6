package logging

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// TopicPrefix je kořen, pod který služby posílají logy (logs/<služba>).
const TopicPrefix = "logs"

// mqttPublisher je jediná metoda mqtt.Client, kterou writer potřebuje.
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MqttLogWriter implementuje io.Writer. Každý zapsaný řádek odejde do MQTT.
type MqttLogWriter struct {
	client mqttPublisher
	topic  string
}

// NewMqttLogWriter vytvoří writer pro topic logs/<serviceName>.
func NewMqttLogWriter(client mqttPublisher, serviceName string) *MqttLogWriter {
	return &MqttLogWriter{
		client: client,
		topic:  fmt.Sprintf("%s/%s", TopicPrefix, serviceName),
	}
}

// Topic vrací cílový topic (pro log při startu).
func (w *MqttLogWriter) Topic() string {
	return w.topic
}

// Write neblokuje na potvrzení (fire-and-forget), logování nesmí brzdit aplikaci.
func (w *MqttLogWriter) Write(p []byte) (int, error) {
	// slog buffer po návratu recykluje, proto kopie.
	payload := make([]byte, len(p))
	copy(payload, p)

	w.client.Publish(w.topic, 0, false, payload)
	return len(p), nil
}

// ConnectMQTT připojí klienta k brokeru. ClientID dostane náhodný suffix,
// aby šlo pustit víc replik stejné služby (broker jinak starší spojení odpojí).
func ConnectMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("%s-%s", clientID, uuid.NewString()[:8])).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out after %s", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return client, nil
}
