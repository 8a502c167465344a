// Package tick defines the Tick domain type and its wire encoding.
//
// A Tick is ephemeral: received from the upstream SDK, serialized here,
// handed to the downstream publisher, and discarded. Nothing in this
// package retains a Tick past the call to Encode.
package tick

import (
	"encoding/json"
	"time"
)

// Side identifies the aggressor side of a trade tick.
type Side int

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

// Tick is one quoted trade or quote update for the subscribed instrument.
type Tick struct {
	Instrument string    // contract code, e.g. "TXFR1"
	DateTime   time.Time // broker-assigned timestamp, TZ-aware (exchange zone)

	Open            float64
	High            float64
	Low             float64
	Close           float64
	AvgPrice        float64
	UnderlyingPrice float64
	Amount          float64
	TotalAmount     float64
	PriceChange     float64
	PctChange       float64

	Volume int64
	Side   Side
}

// wire is the JSON representation produced on the log. Field names and the
// set of fields coerced to float64 match the upstream SDK's own tick
// dictionary so downstream consumers need no translation layer.
type wire struct {
	Code            string  `json:"code"`
	DateTime        string  `json:"datetime"`
	Open            float64 `json:"open"`
	UnderlyingPrice float64 `json:"underlying_price"`
	AvgPrice        float64 `json:"avg_price"`
	Close           float64 `json:"close"`
	High            float64 `json:"high"`
	Low             float64 `json:"low"`
	Amount          float64 `json:"amount"`
	TotalAmount     float64 `json:"total_amount"`
	PriceChg        float64 `json:"price_chg"`
	PctChg          float64 `json:"pct_chg"`
	Volume          int64   `json:"volume"`
	TickType        int     `json:"tick_type"`
}

// Encode serializes t to the compact self-describing JSON form published
// to the log. datetime is rendered ISO-8601 with offset, in whatever zone
// t.DateTime already carries (the caller is expected to have stamped the
// tick with the exchange zone).
func Encode(t Tick) ([]byte, error) {
	w := wire{
		Code:            t.Instrument,
		DateTime:        t.DateTime.Format(time.RFC3339Nano),
		Open:            t.Open,
		UnderlyingPrice: t.UnderlyingPrice,
		AvgPrice:        t.AvgPrice,
		Close:           t.Close,
		High:            t.High,
		Low:             t.Low,
		Amount:          t.Amount,
		TotalAmount:     t.TotalAmount,
		PriceChg:        t.PriceChange,
		PctChg:          t.PctChange,
		Volume:          t.Volume,
		TickType:        int(t.Side),
	}
	return json.Marshal(w)
}
