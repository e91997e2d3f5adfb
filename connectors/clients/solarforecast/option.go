package solarforecast

import (
	"fmt"
	"time"

	"github.com/kilianp07/bessim/connectors"
)

const name = "solar_forecast"

func WithStartDate(startDate time.Time) connectors.Option {
	return func(c connectors.ProfileClient) error {
		if f, ok := c.(*Client); ok {
			f.startDate = startDate
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithStartDate", name)
	}
}

func WithEndDate(endDate time.Time) connectors.Option {
	return func(c connectors.ProfileClient) error {
		if f, ok := c.(*Client); ok {
			f.endDate = endDate
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithEndDate", name)
	}
}

// WithColumn selects the CSV column holding the power values.
func WithColumn(column string) connectors.Option {
	return func(c connectors.ProfileClient) error {
		if f, ok := c.(*Client); ok {
			f.column = column
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithColumn", name)
	}
}
