package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bessim/connectors/clients/solarforecast"
)

func TestNewProfileClient(t *testing.T) {
	c, err := NewProfileClient(IDSolarForecast, "http://example.com")
	require.NoError(t, err)
	assert.IsType(t, &solarforecast.Client{}, c)

	_, err = NewProfileClient("weather_api", "")
	assert.Error(t, err)
}
