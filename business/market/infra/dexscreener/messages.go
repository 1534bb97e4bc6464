// Package dexscreener adapts the public DexScreener search API to the
// MarketSource port.
package dexscreener

// searchResponse is the wire shape of /latest/dex/search.
type searchResponse struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []pairInfo `json:"pairs"`
}

type pairInfo struct {
	ChainID     string     `json:"chainId"`
	DexID       string     `json:"dexId"`
	URL         string     `json:"url"`
	PairAddress string     `json:"pairAddress"`
	BaseToken   tokenInfo  `json:"baseToken"`
	QuoteToken  tokenInfo  `json:"quoteToken"`
	PriceNative string     `json:"priceNative"`
	PriceUSD    string     `json:"priceUsd"`
	Liquidity   *liquidity `json:"liquidity"`
}

type tokenInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}
