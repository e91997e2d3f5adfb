package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/infra/logger"
)

// InfluxSink writes run summaries to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one "bess_run" point.
func (s *InfluxSink) RecordRun(r model.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoint(r))
}

// RecordSweep writes one "bess_sweep" point.
func (s *InfluxSink) RecordSweep(sw coremetrics.SweepSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("bess_sweep").
		AddTag("kind", sw.Kind).
		AddField("jobs", sw.Jobs).
		AddField("failed", sw.Failed).
		AddField("feasible", sw.Feasible).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func runPoint(r model.RunSummary) *write.Point {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	b := r.Battery.Normalized()
	return write.NewPointWithMeasurement("bess_run").
		AddTag("run_id", r.RunID).
		AddTag("strategy", r.Strategy.String()).
		AddTag("technology", string(b.Technology)).
		AddTag("topology", string(b.Topology)).
		AddTag("valid", strconv.FormatBool(r.Valid)).
		AddField("power_mw", round3(b.PowerMW)).
		AddField("duration_h", round3(b.DurationHours)).
		AddField("solar_mwh", round3(r.SolarMWh)).
		AddField("delivered_mwh", round3(r.DeliveredMWh)).
		AddField("curtailed_mwh", round3(r.CurtailedMWh)).
		AddField("loss_mwh", round3(r.LossMWh)).
		AddField("cycles", round3(r.Cycles)).
		AddField("efficiency", round3(r.Efficiency)).
		SetTime(ts)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
