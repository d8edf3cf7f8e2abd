package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	receiptPollInterval = 2 * time.Second
	transferGasLimit    = 21000
)

// EthGateway implements Gateway over a JSON-RPC Ethereum node. Outbound
// transfers are signed with the server wallet key.
type EthGateway struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// NewEthGateway dials rpcURL and derives the server wallet address from
// privateKeyHex (no 0x prefix).
func NewEthGateway(ctx context.Context, rpcURL, privateKeyHex string) (*EthGateway, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse server key: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return &EthGateway{
		client:  client,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// Address returns the server settlement wallet address.
func (g *EthGateway) Address() string {
	return g.address.Hex()
}

func (g *EthGateway) GetTransaction(ctx context.Context, hash string) (*Transaction, error) {
	tx, _, err := g.client.TransactionByHash(ctx, common.HexToHash(hash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrTxNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("transaction by hash: %w", err)
	}
	to := ""
	if tx.To() != nil {
		to = tx.To().Hex()
	}
	return &Transaction{To: to, Value: tx.Value()}, nil
}

// WaitForTransaction polls for the receipt until the transaction is
// mined or ctx expires. Callers bound the wait with a deadline; no
// ledger lock may be held across this call.
func (g *EthGateway) WaitForTransaction(ctx context.Context, hash string) error {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	txHash := common.HexToHash(hash)
	for {
		receipt, err := g.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return ErrTxFailed
			}
			return nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return fmt.Errorf("transaction receipt: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (g *EthGateway) SendTransaction(ctx context.Context, to string, wei *big.Int) (string, error) {
	nonce, err := g.client.PendingNonceAt(ctx, g.address)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}
	tx := types.NewTransaction(nonce, common.HexToAddress(to), wei, transferGasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), g.key)
	if err != nil {
		return "", fmt.Errorf("sign transfer: %w", err)
	}
	if err := g.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send transfer: %w", err)
	}
	return signed.Hash().Hex(), nil
}
