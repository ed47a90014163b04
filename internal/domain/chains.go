package domain

// ChainSupport describes deposit/withdraw availability for one blockchain
// network of a coin on a single exchange.
type ChainSupport struct {
	Name            string `json:"name"`
	DepositEnabled  bool   `json:"deposit_enabled"`
	WithdrawEnabled bool   `json:"withdraw_enabled"`
}

// CoinChainInfo lists the networks an exchange supports for one coin.
type CoinChainInfo struct {
	Exchange string         `json:"exchange"`
	Symbol   string         `json:"symbol"`
	Chains   []ChainSupport `json:"chains"`
}

// WithdrawChains returns the names of all withdraw-enabled chains.
func (c CoinChainInfo) WithdrawChains() []string {
	var out []string
	for _, ch := range c.Chains {
		if ch.WithdrawEnabled {
			out = append(out, ch.Name)
		}
	}
	return out
}

// DepositChains returns the names of all deposit-enabled chains.
func (c CoinChainInfo) DepositChains() []string {
	var out []string
	for _, ch := range c.Chains {
		if ch.DepositEnabled {
			out = append(out, ch.Name)
		}
	}
	return out
}

// TransferRoute is a verified way to move an asset between two exchanges. It
// exists only when the source's withdraw-enabled chains and the destination's
// deposit-enabled chains intersect.
type TransferRoute struct {
	FromExchange     string   `json:"from_exchange"`
	ToExchange       string   `json:"to_exchange"`
	Symbol           string   `json:"symbol"`
	CompatibleChains []string `json:"compatible_chains"`
}
