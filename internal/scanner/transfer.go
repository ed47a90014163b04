package scanner

import (
	"sort"
	"strings"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// Route determines whether an asset can move from one exchange to another by
// intersecting the source's withdraw-enabled chains with the destination's
// deposit-enabled chains. Chain names are compared case-insensitively because
// venues disagree on casing for the same network.
//
// Missing chain info for either exchange blocks the route: absence of data is
// never treated as compatibility. The returned chain list is sorted so
// evaluation output is deterministic.
func Route(symbol, from, to string, chainInfo map[string]domain.CoinChainInfo) (domain.TransferRoute, bool) {
	fromInfo, ok := chainInfo[domain.QuoteKey(from, symbol)]
	if !ok {
		return domain.TransferRoute{}, false
	}
	toInfo, ok := chainInfo[domain.QuoteKey(to, symbol)]
	if !ok {
		return domain.TransferRoute{}, false
	}

	withdrawable := make(map[string]string) // normalized -> original
	for _, name := range fromInfo.WithdrawChains() {
		withdrawable[strings.ToUpper(name)] = name
	}

	var compatible []string
	seen := make(map[string]bool)
	for _, name := range toInfo.DepositChains() {
		key := strings.ToUpper(name)
		if _, ok := withdrawable[key]; ok && !seen[key] {
			seen[key] = true
			compatible = append(compatible, withdrawable[key])
		}
	}
	if len(compatible) == 0 {
		return domain.TransferRoute{}, false
	}
	sort.Strings(compatible)

	return domain.TransferRoute{
		FromExchange:     from,
		ToExchange:       to,
		Symbol:           symbol,
		CompatibleChains: compatible,
	}, true
}
