package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

const (
	DefaultChainID  = 19411
	DefaultGasLimit = 13_000_000
)

// DefaultFee is 0.01 gwei, used for both the fee cap and the tip.
var DefaultFee = big.NewInt(10_000_000)

// Client is the part of an RPC client the sender needs. *ethclient.Client
// satisfies it.
type Client interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Client = (*ethclient.Client)(nil)

// Dial connects to an RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", errors.ErrRemote, rpcURL, err)
	}
	return c, nil
}

// Sender builds, signs and sends EIP-1559 transactions from one wallet.
type Sender struct {
	Client   Client
	Wallet   *Wallet
	ChainID  *big.Int
	GasLimit uint64
	MaxFee   *big.Int
	MaxTip   *big.Int
	Logger   zerolog.Logger
}

func NewSender(client Client, wallet *Wallet, chainID int64) *Sender {
	return &Sender{
		Client:   client,
		Wallet:   wallet,
		ChainID:  big.NewInt(chainID),
		GasLimit: DefaultGasLimit,
		MaxFee:   new(big.Int).Set(DefaultFee),
		MaxTip:   new(big.Int).Set(DefaultFee),
		Logger:   zerolog.Nop(),
	}
}

// Send submits a zero-value call of data to to, using the pending nonce.
func (s *Sender) Send(ctx context.Context, to, data string) (common.Hash, error) {
	if !common.IsHexAddress(to) {
		return common.Hash{}, fmt.Errorf("%w: %q is not an address", errors.ErrInvalidInput, to)
	}
	payload, err := hexutil.Decode(data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: calldata: %v", errors.ErrInvalidInput, err)
	}

	nonce, err := s.Client.PendingNonceAt(ctx, s.Wallet.Address())
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: pending nonce: %v", errors.ErrRemote, err)
	}

	target := common.HexToAddress(to)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.ChainID,
		Nonce:     nonce,
		GasTipCap: s.MaxTip,
		GasFeeCap: s.MaxFee,
		Gas:       s.GasLimit,
		To:        &target,
		Value:     big.NewInt(0),
		Data:      payload,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.ChainID), s.Wallet.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.Client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("%w: send transaction: %v", errors.ErrRemote, err)
	}
	s.Logger.Info().
		Str("tx", signed.Hash().Hex()).
		Uint64("nonce", nonce).
		Str("to", target.Hex()).
		Int("bytes", len(payload)).
		Msg("transaction sent")
	return signed.Hash(), nil
}

// From is the address transactions are signed by.
func (s *Sender) From() common.Address { return s.Wallet.Address() }

// WaitReceipt waits for hash on the sender's client.
func (s *Sender) WaitReceipt(ctx context.Context, hash common.Hash, interval, timeout time.Duration) (*types.Receipt, error) {
	return WaitReceipt(ctx, s.Client, hash, interval, timeout)
}

// WaitReceipt polls for the receipt of hash every interval until it is
// mined, the timeout passes or ctx ends. A reverted transaction is an error
// and its receipt is still returned.
func WaitReceipt(ctx context.Context, c Client, hash common.Hash, interval, timeout time.Duration) (*types.Receipt, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: transaction %s reverted in block %v", errors.ErrRemote, hash.Hex(), receipt.BlockNumber)
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
		case ctx.Err() != nil:
		default:
			return nil, fmt.Errorf("%w: receipt %s: %v", errors.ErrRemote, hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
