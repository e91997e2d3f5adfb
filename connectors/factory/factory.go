package factory

import (
	"fmt"

	"github.com/kilianp07/bessim/connectors"
	"github.com/kilianp07/bessim/connectors/clients/solarforecast"
)

const (
	IDSolarForecast = "solar_forecast"
)

var (
	errUnknownClient = "unknown connector id: %s"
)

// NewProfileClient returns the connector registered under id. An empty id
// selects the CSV forecast client.
func NewProfileClient(id, baseURL string) (connectors.ProfileClient, error) {
	switch id {
	case IDSolarForecast, "":
		return solarforecast.New(baseURL), nil
	default:
		return nil, fmt.Errorf(errUnknownClient, id)
	}
}
