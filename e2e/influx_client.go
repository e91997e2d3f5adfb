package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient reads back what the simulator's Influx sink wrote. It
// hides the token, org and bucket plumbing from the tests.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for an already running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		org:    org,
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// RunFields returns the field values of the "bess_run" point tagged with
// runID written in the last hour.
func (c *InfluxClient) RunFields(ctx context.Context, runID string) (map[string]any, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start: -1h)
  |> filter(fn: (r) => r._measurement == "bess_run" and r.run_id == %q)`, c.bucket, runID)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	fields := map[string]any{}
	for res.Next() {
		rec := res.Record()
		fields[rec.Field()] = rec.Value()
	}
	return fields, res.Err()
}

// Ready reports whether the server passes its health check.
func (c *InfluxClient) Ready(ctx context.Context) error {
	h, err := c.client.Health(ctx)
	if err != nil {
		return err
	}
	if h.Status != "pass" {
		return fmt.Errorf("influx status %s", h.Status)
	}
	return nil
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
