package returns

import (
	"fmt"
	"math"
)

// WaterfallPolicy holds the sponsor/LP terms applied to a deal's profit. The defaults
// reproduce the house terms: 30% equity check, 20% preferred return, 50% split.
type WaterfallPolicy struct {
	EquityShare    float64 `yaml:"equity_share" json:"equity_share"`       // Share of purchase price funded with equity
	PreferredShare float64 `yaml:"preferred_share" json:"preferred_share"` // LP preferred return, share of profit
	SplitShare     float64 `yaml:"split_share" json:"split_share"`         // LP share of the remaining split
	IRRProxyFactor float64 `yaml:"irr_proxy_factor" json:"irr_proxy_factor"`
}

// DefaultPolicy returns the house waterfall terms.
func DefaultPolicy() WaterfallPolicy {
	return WaterfallPolicy{
		EquityShare:    0.30,
		PreferredShare: 0.20,
		SplitShare:     0.50,
		IRRProxyFactor: 0.80,
	}
}

// TotalLPShare is the LP's combined share of profit (pref + split).
func (p WaterfallPolicy) TotalLPShare() float64 {
	return p.PreferredShare + p.SplitShare
}

// Validate checks that every share is a fraction and that the LP never receives more
// than the whole profit.
func (p WaterfallPolicy) Validate() error {
	shares := []struct {
		name  string
		value float64
	}{
		{"equity_share", p.EquityShare},
		{"preferred_share", p.PreferredShare},
		{"split_share", p.SplitShare},
		{"irr_proxy_factor", p.IRRProxyFactor},
	}
	for _, s := range shares {
		if math.IsNaN(s.value) || s.value < 0 || s.value > 1 {
			return fmt.Errorf("waterfall policy: %s must be within [0, 1], got %v", s.name, s.value)
		}
	}
	if p.TotalLPShare() > 1 {
		return fmt.Errorf("waterfall policy: preferred_share + split_share must not exceed 1, got %.4f", p.TotalLPShare())
	}
	return nil
}
