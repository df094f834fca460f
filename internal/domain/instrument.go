package domain

type InstrumentKind string

const (
	InstrumentKindShare    InstrumentKind = "share"
	InstrumentKindEtf      InstrumentKind = "etf"
	InstrumentKindCurrency InstrumentKind = "currency"
)

// UnresolvedInstrumentName is reported for FIGIs that match none of the
// instrument catalogs, which in practice is the account's cash balance
const UnresolvedInstrumentName = "unresolved (cash?)"

// Instrument is a tradable share, ETF or currency, keyed by FIGI
type Instrument struct {
	Figi   string
	Ticker string
	Name   string
	// Lot is the minimum tradable number of units
	Lot  int64
	Kind InstrumentKind
}

// InstrumentCatalog maps FIGI to an instrument. Catalogs are built once per
// cache population and never written to afterwards.
type InstrumentCatalog map[string]Instrument

func NewInstrumentCatalog(instruments []Instrument) InstrumentCatalog {
	out := make(InstrumentCatalog, len(instruments))
	for _, i := range instruments {
		if i.Lot <= 0 {
			i.Lot = 1
		}
		out[i.Figi] = i
	}
	return out
}

// Catalogs groups the three catalogs an instrument can be resolved from
type Catalogs struct {
	Shares     InstrumentCatalog
	Etfs       InstrumentCatalog
	Currencies InstrumentCatalog
}

// Resolve looks the FIGI up in shares, then ETFs, then currencies. The
// second return value is false when none of them knows the FIGI; the
// returned instrument then carries the sentinel name and a lot of 1.
func (c Catalogs) Resolve(figi string) (Instrument, bool) {
	for _, catalog := range []InstrumentCatalog{c.Shares, c.Etfs, c.Currencies} {
		if i, ok := catalog[figi]; ok {
			return i, true
		}
	}
	return Instrument{
		Figi: figi,
		Name: UnresolvedInstrumentName,
		Lot:  1,
	}, false
}
