// Package telemetry publishes per-step biomass observations to an MQTT
// broker so greenhouse dashboards can follow a simulation live.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/verdantlab/lettsim/internal/logging"
	"github.com/verdantlab/lettsim/internal/sim"
)

const connectAttempts = 5

// Topic returns the biomass topic for a plot identifier.
func Topic(plotID string) string {
	return "lettsim/biomass/" + plotID
}

// Conn is the slice of mqtt.Client the publisher needs. Keeping it
// narrow lets tests run against a fake instead of a live broker.
type Conn interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Connect dials the broker, retrying with exponential backoff. The
// connection is torn down when ctx is cancelled.
func Connect(ctx context.Context, broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		return nil
	}, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), connectAttempts-1))
	if err != nil {
		return nil, fmt.Errorf("telemetry: connect to %s: %w", broker, err)
	}

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
	}()
	return client, nil
}

// Geometry carries the stand parameters needed to derive canopy
// figures from a raw state vector. External overrides the computed
// closure when non-negative.
type Geometry struct {
	LAR          float64
	RootFraction float64
	Density      float64
	K            float64
	External     float64
}

func (g Geometry) lai(x sim.State) float64 {
	if len(x) < 2 {
		return 0
	}
	return g.LAR * (1 - g.RootFraction) * x[1] * g.Density
}

func (g Geometry) closure(x sim.State) float64 {
	if g.External >= 0 {
		return g.External
	}
	return 1 - math.Exp(-g.K*g.lai(x))
}

// Observation is the JSON message published per step.
type Observation struct {
	Step      int     `json:"step"`
	Hour      int     `json:"hour"`
	DryWeight float64 `json:"dry_weight_g"`
	LAI       float64 `json:"lai"`
	Closure   float64 `json:"canopy_closure"`
}

// Publisher forwards each observed step to the plot's biomass topic.
// It implements sim.Observer. Publish failures never interrupt the
// run; the first one is kept for Err.
type Publisher struct {
	conn  Conn
	topic string
	qos   byte
	geom  Geometry
	log   *slog.Logger
	step  int
	err   error
}

func NewPublisher(conn Conn, plotID string, qos byte, geom Geometry, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Publisher{
		conn:  conn,
		topic: Topic(plotID),
		qos:   qos,
		geom:  geom,
		log:   logger,
	}
}

func (p *Publisher) OnStep(x sim.State, u sim.Control, t float64) {
	p.step++
	obs := Observation{
		Step:      p.step,
		Hour:      int(t / 3600),
		DryWeight: x.Sum(),
		LAI:       p.geom.lai(x),
		Closure:   p.geom.closure(x),
	}
	payload, err := json.Marshal(obs)
	if err != nil {
		p.record(err)
		return
	}

	token := p.conn.Publish(p.topic, p.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		p.record(token.Error())
	}
}

func (p *Publisher) record(err error) {
	if p.err == nil {
		p.err = err
		p.log.Warn("telemetry publish failed", "topic", p.topic, "err", err)
		return
	}
	p.log.Debug("telemetry publish failed", "topic", p.topic, "err", err)
}

// Err reports the first publish failure, if any.
func (p *Publisher) Err() error { return p.err }

// Close disconnects from the broker if still connected.
func (p *Publisher) Close() {
	if p.conn.IsConnected() {
		p.conn.Disconnect(250)
	}
}
