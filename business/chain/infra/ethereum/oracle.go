// Package ethereum implements the gas oracle against a JSON-RPC node.
package ethereum

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/apexarb/apexarb/business/chain/domain"
	"github.com/apexarb/apexarb/internal/apperror"
	"github.com/apexarb/apexarb/internal/logger"
)

// Oracle queries eth_gasPrice through go-ethereum's client.
type Oracle struct {
	client *ethclient.Client
	logger logger.LoggerInterface
}

// New dials the RPC endpoint. Dialing is lazy for HTTP endpoints, so a
// down node surfaces on the first GasPrice call, not here.
func New(rpcURL string, log logger.LoggerInterface) (*Oracle, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, apperror.Transient(apperror.CodeGasOracleFailed, "rpc_url="+rpcURL, err)
	}
	return &Oracle{client: client, logger: log}, nil
}

// GasPrice implements app.GasOracle.
func (o *Oracle) GasPrice(ctx context.Context) (domain.GasPrice, error) {
	wei, err := o.client.SuggestGasPrice(ctx)
	if err != nil {
		return domain.GasPrice{}, apperror.Transient(apperror.CodeGasOracleFailed, "eth_gasPrice", err)
	}

	price := domain.NewGasPriceFromWei(wei, time.Now())
	o.logger.Debug(ctx, "gas price fetched", "gwei", price.Gwei)
	return price, nil
}

// Close releases the underlying RPC connection.
func (o *Oracle) Close() {
	o.client.Close()
}
