// Package riskhttp implements the RiskScorer port against an external
// HTTP scoring service. Calls are timeout-bounded and wrapped in a
// circuit breaker so a dead scorer costs nothing after it trips; to the
// caller a tripped breaker is just another absent verdict.
package riskhttp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/apexarb/apexarb/business/arbitrage/domain"
	"github.com/apexarb/apexarb/internal/apperror"
	"github.com/apexarb/apexarb/internal/config"
	"github.com/apexarb/apexarb/internal/httpclient"
	"github.com/apexarb/apexarb/internal/logger"
)

const (
	providerName = "risk-scorer"
	scorePath    = "/v1/score"
)

type scoreRequest struct {
	PairSymbols     string   `json:"pairSymbols"`
	SpreadPct       string   `json:"spreadPct"`
	NetProfitUSD    string   `json:"netProfitUsd"`
	EstimatedGasUSD string   `json:"estimatedGasUsd"`
	Route           []string `json:"route"`
}

type scoreResponse struct {
	RiskLevel string `json:"riskLevel"`
	Score     int    `json:"score"`
	Reason    string `json:"reason"`
}

// Client scores opportunities over HTTP.
type Client struct {
	client  httpclient.Client
	breaker *gobreaker.CircuitBreaker[scoreResponse]
	timeout time.Duration
	logger  logger.LoggerInterface
}

// New builds a Client from the risk config section.
func New(cfg config.RiskConfig, log logger.LoggerInterface) (*Client, error) {
	settings := gobreaker.Settings{
		Name:    providerName,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	client, err := httpclient.New(
		httpclient.WithProviderName(providerName),
		httpclient.WithBaseURL(cfg.URL),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[scoreResponse](settings),
		timeout: cfg.Timeout,
		logger:  log,
	}, nil
}

// Score implements app.RiskScorer.
func (c *Client) Score(ctx context.Context, opp domain.Opportunity) (domain.RiskVerdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (scoreResponse, error) {
		return c.post(ctx, opp)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.RiskVerdict{}, apperror.Transient(apperror.CodeCircuitOpen, providerName, err)
		}
		return domain.RiskVerdict{}, apperror.Transient(apperror.CodeRiskScoreFailed, opp.PairID, err)
	}

	return domain.RiskVerdict{
		Level:  domain.RiskLevel(strings.ToUpper(result.RiskLevel)),
		Score:  result.Score,
		Reason: result.Reason,
	}, nil
}

func (c *Client) post(ctx context.Context, opp domain.Opportunity) (scoreResponse, error) {
	route := make([]string, len(opp.Route))
	for i, step := range opp.Route {
		route[i] = string(step.Kind) + " " + step.Description
	}

	var result scoreResponse
	resp, err := c.client.NewRequest().
		SetBody(scoreRequest{
			PairSymbols:     opp.PairID,
			SpreadPct:       opp.SpreadPct.String(),
			NetProfitUSD:    opp.NetProfitUSD.String(),
			EstimatedGasUSD: opp.GasUSD.String(),
			Route:           route,
		}).
		SetResult(&result).
		Post(ctx, scorePath)
	if err != nil {
		return scoreResponse{}, err
	}
	if resp.IsError() {
		return scoreResponse{}, apperror.Transient(apperror.CodeRiskScoreFailed,
			"status "+resp.Status, nil)
	}

	return result, nil
}
