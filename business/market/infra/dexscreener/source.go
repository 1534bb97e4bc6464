package dexscreener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/market/domain"
	"github.com/apexarb/apexarb/internal/apm"
	"github.com/apexarb/apexarb/internal/apperror"
	"github.com/apexarb/apexarb/internal/config"
	"github.com/apexarb/apexarb/internal/httpclient"
	"github.com/apexarb/apexarb/internal/logger"
	"github.com/apexarb/apexarb/internal/ratelimit"
)

const (
	providerName = "dexscreener"
	searchPath   = "/latest/dex/search"
)

// Source polls DexScreener's search endpoint for each configured search
// term and normalizes the hits into MarketSamples.
type Source struct {
	client      httpclient.Client
	limiter     *ratelimit.Limiter
	tracer      apm.Tracer
	logger      logger.LoggerInterface
	chainID     string
	venues      map[string]struct{}
	tokens      map[string]struct{}
	searchTerms []string
	minLiqUSD   decimal.Decimal
}

// New builds a Source from the market section of the config.
func New(cfg config.MarketConfig, log logger.LoggerInterface) (*Source, error) {
	client, err := httpclient.New(
		httpclient.WithProviderName(providerName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}

	venues := make(map[string]struct{}, len(cfg.Venues))
	for _, v := range cfg.Venues {
		venues[strings.ToLower(v)] = struct{}{}
	}
	tokens := make(map[string]struct{}, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		tokens[strings.ToUpper(t)] = struct{}{}
	}

	return &Source{
		client:      client,
		limiter:     ratelimit.New(cfg.RateLimitPerMinute),
		tracer:      apm.NewTracer(providerName),
		logger:      log,
		chainID:     strings.ToLower(cfg.ChainID),
		venues:      venues,
		tokens:      tokens,
		searchTerms: cfg.SearchTerms,
		minLiqUSD:   decimal.NewFromFloat(cfg.MinPairLiquidityUSD),
	}, nil
}

// Poll implements app.MarketSource. Each configured search term costs one
// rate-limited request; results across terms are deduplicated by
// venue-qualified pair id, first hit wins.
func (s *Source) Poll(ctx context.Context) ([]domain.MarketSample, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "dexscreener.poll")
	defer span.End()

	observedAt := time.Now()
	seen := make(map[string]struct{})
	var samples []domain.MarketSample

	for _, term := range s.searchTerms {
		if err := s.limiter.Wait(ctx); err != nil {
			span.NoticeError(err)
			return nil, apperror.Transient(apperror.CodeRateLimitExceeded, "term="+term, err)
		}

		pairs, err := s.search(ctx, term)
		if err != nil {
			span.NoticeError(err)
			return nil, err
		}

		for _, p := range pairs {
			sample, ok := s.normalize(p, observedAt)
			if !ok {
				continue
			}
			id := sample.FullID()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			samples = append(samples, sample)
		}
	}

	s.logger.Debug(ctx, "dexscreener poll complete", "terms", len(s.searchTerms), "samples", len(samples))
	return samples, nil
}

func (s *Source) search(ctx context.Context, term string) ([]pairInfo, error) {
	var result searchResponse

	resp, err := s.client.NewRequest().
		SetQueryParam("q", term).
		SetResult(&result).
		Get(ctx, searchPath)
	if err != nil {
		code := apperror.CodeMarketFetchFailed
		if resp != nil {
			// Transport succeeded but the payload did not unmarshal.
			code = apperror.CodeMarketDecodeFailed
		}
		return nil, apperror.Transient(code, "term="+term, err)
	}
	if resp.IsError() {
		return nil, apperror.Transient(apperror.CodeMarketFetchFailed,
			fmt.Sprintf("term=%s status=%d", term, resp.StatusCode), nil)
	}

	return result.Pairs, nil
}

// normalize filters one raw pair down to a sample on the configured chain
// and venues, with a parseable USD price and enough pooled liquidity to be
// worth quoting at all.
func (s *Source) normalize(p pairInfo, observedAt time.Time) (domain.MarketSample, bool) {
	if !strings.EqualFold(p.ChainID, s.chainID) {
		return domain.MarketSample{}, false
	}
	if _, ok := s.venues[strings.ToLower(p.DexID)]; !ok {
		return domain.MarketSample{}, false
	}

	base := strings.ToUpper(p.BaseToken.Symbol)
	quote := strings.ToUpper(p.QuoteToken.Symbol)
	if base == "" || quote == "" {
		return domain.MarketSample{}, false
	}
	if len(s.tokens) > 0 {
		if _, ok := s.tokens[base]; !ok {
			return domain.MarketSample{}, false
		}
	}

	if p.PriceUSD == "" || p.Liquidity == nil {
		return domain.MarketSample{}, false
	}
	price, err := decimal.NewFromString(p.PriceUSD)
	if err != nil || !price.IsPositive() {
		return domain.MarketSample{}, false
	}

	liq := decimal.NewFromFloat(p.Liquidity.USD)
	if liq.LessThan(s.minLiqUSD) {
		return domain.MarketSample{}, false
	}

	return domain.NewMarketSample(base, quote, strings.ToLower(p.DexID), price, liq, observedAt), true
}
