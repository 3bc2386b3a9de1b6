// models/toll.go
package models

import (
	"strconv"
	"strings"
)

// Coordinate is a longitude or latitude already rounded to 7 decimal places.
// It marshals in plain decimal notation so snapshots never switch to exponent form.
type Coordinate float64

func (c Coordinate) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(c), 'f', -1, 64), nil
}

func (c *Coordinate) UnmarshalText(b []byte) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return err
	}
	*c = Coordinate(f)
	return nil
}

// GeoRecord is one plaza marker from the KML feed.
// CSV headers match the historical markers-*.csv layout.
type GeoRecord struct {
	Name      string     `csv:"Name"`
	Longitude Coordinate `csv:"Longitude"`
	Latitude  Coordinate `csv:"Latitude"`
	ID        string     `csv:"id"` // "" when Name carries no trailing "(<digits>)"
}

// Rate is a toll amount that may be missing (e.g. "Free" or a blank cell).
type Rate struct {
	Value float64
	Valid bool
}

// NewRate returns a present rate.
func NewRate(v float64) Rate { return Rate{Value: v, Valid: true} }

func (r Rate) MarshalText() ([]byte, error) {
	if !r.Valid {
		return []byte{}, nil
	}
	return strconv.AppendFloat(nil, r.Value, 'f', -1, 64), nil
}

func (r *Rate) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*r = Rate{}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*r = NewRate(f)
	return nil
}

// RateRow is one time-window row of a plaza/category rate table.
//
// PlazaID and CategoryIndex are the raw coordinates of the table the row came
// from; they are not written to snapshots. The resolved fields are.
type RateRow struct {
	PlazaID       string `csv:"-"`
	CategoryIndex int    `csv:"-"`

	PlazaName       string `csv:"plaza_name"`
	VehicleCategory string `csv:"vehicle_cat"`
	TimeWindow      string `csv:"time"`
	Rate            Rate   `csv:"rates"`
	Applicability   string `csv:"weekdays/weekends"`
}
