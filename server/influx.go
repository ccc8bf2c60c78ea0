package server

import (
	"context"
	"fmt"
	"time"

	"github.com/dvla-io/dvla/util"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// InfluxConfig is the influx db configuration
type InfluxConfig struct {
	URL      string
	Database string
	Token    string
	Org      string
	User     string
	Password string
}

// Influx is a influx publisher
type Influx struct {
	log    *util.Logger
	client influxdb2.Client
	org    string
	bucket string
}

// NewInfluxClient creates new publisher for influx
func NewInfluxClient(url, token, org, user, password, database string) *Influx {
	log := util.NewLogger("influx")

	// InfluxDB v1 compatibility
	if token == "" && user != "" {
		token = fmt.Sprintf("%s:%s", user, password)
	}

	log.Redact(token, password)

	options := influxdb2.DefaultOptions().SetPrecision(time.Second)
	client := influxdb2.NewClientWithOptions(url, token, options)

	return &Influx{
		log:    log,
		client: client,
		org:    org,
		bucket: database,
	}
}

// point converts a vehicle parameter into an influx point. Only sensor values are written.
func point(p util.Param, ts time.Time) *write.Point {
	if p.Vehicle == "" {
		return nil
	}

	var val interface{}
	switch v := p.Val.(type) {
	case string:
		val = v
	case int:
		val = int64(v)
	case bool:
		val = v
	case float64:
		val = v
	default:
		return nil
	}

	tags := map[string]string{"vehicle": p.Vehicle}
	fields := map[string]interface{}{"value": val}

	return influxdb2.NewPoint(p.Key, tags, fields, ts)
}

// Run Influx publisher
func (m *Influx) Run(in <-chan util.Param) {
	writer := m.client.WriteAPI(m.org, m.bucket)

	// log errors
	go func() {
		for err := range writer.Errors() {
			m.log.ERROR.Println(err)
		}
	}()

	m.run(writer, in)
	m.client.Close()
}

func (m *Influx) run(writer influxapi.WriteAPI, in <-chan util.Param) {
	for param := range in {
		if p := point(param, time.Now()); p != nil {
			m.log.TRACE.Printf("write %s.%s: %v", param.Vehicle, param.Key, param.Val)
			writer.WritePoint(p)
		}
	}

	writer.Flush()
}

// Ping verifies the influx server is reachable
func (m *Influx) Ping(ctx context.Context) error {
	ok, err := m.client.Ping(ctx)
	if err == nil && !ok {
		err = fmt.Errorf("%s: not healthy", m.client.ServerURL())
	}
	return err
}
