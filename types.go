package quant

import "strings"

type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	if t == Put {
		return "put"
	}
	return "call"
}

// ParseOptionType accepts the usual spellings found in option chain dumps
// ("call", "C", "CE", "put", "P", "PE"). Anything else is reported as not ok.
func ParseOptionType(s string) (OptionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c", "ce":
		return Call, true
	case "put", "p", "pe":
		return Put, true
	}
	return Call, false
}

// Option is a vanilla European contract.
type Option struct {
	Strike float64
	Type   OptionType
}

// MarketScenario bundles the scalar market inputs an option is priced
// against. Maturity is in years.
type MarketScenario struct {
	Spot          float64
	Rate          float64
	DividendYield float64
	Maturity      float64
}
