package models

import (
	"time"
)

type Channel string

const (
	ChannelPPC    Channel = "PPC"
	ChannelEmail  Channel = "Email"
	ChannelSocial Channel = "Social Media"
)

// Column names shared by raw sources and report tables.
const (
	ColDate         = "date"
	ColChannel      = "channel"
	ColSpend        = "spend"
	ColClicks       = "clicks"
	ColEmailsSent   = "emails_sent"
	ColImpressions  = "impressions"
	ColRevenue      = "revenue"
	ColConversions  = "conversions"
	ColConversionID = "conversion_id"
)

// ReportColumns is the header of the daily and weekly outputs.
var ReportColumns = []string{
	ColDate, ColChannel, ColSpend, ColClicks, ColEmailsSent, ColImpressions, ColRevenue, ColConversions,
}

// Record is one table row keyed by column name. A value is nil (null),
// a raw string cell, a float64, or a time.Time for parsed dates.
type Record map[string]any

// Frame is a named table with ordered columns.
type Frame struct {
	Name    string
	Columns []string
	Rows    []Record
}

func (f Frame) Has(col string) bool {
	for _, c := range f.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn appends col to the header if it is not already present.
func (f *Frame) AddColumn(col string) {
	if !f.Has(col) {
		f.Columns = append(f.Columns, col)
	}
}

// Clone returns a copy whose rows can be mutated without touching f.
func (f Frame) Clone() Frame {
	out := Frame{
		Name:    f.Name,
		Columns: append([]string(nil), f.Columns...),
		Rows:    make([]Record, len(f.Rows)),
	}
	for i, r := range f.Rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// ReportRow is one integrated, daily or weekly row. A zero Date means the
// source date could not be parsed.
type ReportRow struct {
	Date        time.Time
	Channel     string
	Spend       float64
	Clicks      float64
	EmailsSent  float64
	Impressions float64
	Revenue     float64
	Conversions float64
}

func (r ReportRow) HasDate() bool { return !r.Date.IsZero() }

// Add sums every numeric column of o into r.
func (r *ReportRow) Add(o ReportRow) {
	r.Spend += o.Spend
	r.Clicks += o.Clicks
	r.EmailsSent += o.EmailsSent
	r.Impressions += o.Impressions
	r.Revenue += o.Revenue
	r.Conversions += o.Conversions
}

type Metrics struct {
	Date        string  `json:"date"`
	Channel     string  `json:"channel"`
	Spend       float64 `json:"spend"`
	Clicks      float64 `json:"clicks"`
	EmailsSent  float64 `json:"emails_sent"`
	Impressions float64 `json:"impressions"`
	Revenue     float64 `json:"revenue"`
	Conversions float64 `json:"conversions"`
	CPC         float64 `json:"cpc"`
	CPA         float64 `json:"cpa"`
	ROAS        float64 `json:"roas"`
}
