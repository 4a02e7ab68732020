package models

import "github.com/pkg/errors"

// Instrument identifies a tradable market the pipeline scans.
type Instrument string

const (
	EURUSD Instrument = "EURUSD"
	XAUUSD Instrument = "XAUUSD"
	BTCEUR Instrument = "BTCEUR"
)

// Instruments returns every supported instrument in scan order.
func Instruments() []Instrument {
	return []Instrument{EURUSD, XAUUSD, BTCEUR}
}

// ParseInstrument validates an instrument name coming from config or storage.
func ParseInstrument(s string) (Instrument, error) {
	switch Instrument(s) {
	case EURUSD, XAUUSD, BTCEUR:
		return Instrument(s), nil
	}
	return "", errors.Errorf("unknown instrument %q", s)
}

func (i Instrument) String() string {
	return string(i)
}
