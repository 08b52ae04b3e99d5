package stark

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nando-os/ghost-stark/felt"
)

var (
	ErrTransactionRejected = errors.New("transaction rejected")
	ErrTransactionReverted = errors.New("transaction reverted")
)

// Caller is the JSON-RPC transport the provider talks through.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// Ensure *rpc.Client implements Caller
var _ Caller = (*rpc.Client)(nil)

// Provider reads chain state and submits transactions over the Starknet
// JSON-RPC API.
type Provider struct {
	client   Caller
	config   Config
	receipts *lru.Cache[felt.Felt, *TransactionReceipt]
}

// Dial connects to cfg.RPCURL() and checks that the node serves the
// configured chain.
func Dial(ctx context.Context, cfg Config) (*Provider, error) {
	// Log proxy usage if configured
	if os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" {
		log.Info("Connecting to Starknet network via proxy",
			"http_proxy", os.Getenv("HTTP_PROXY"),
			"https_proxy", os.Getenv("HTTPS_PROXY"))
	}

	// HTTP_PROXY and HTTPS_PROXY are honoured by the default HTTP transport
	log.Info("Connecting to Starknet RPC", "url", cfg.RPCURL())
	client, err := rpc.DialContext(ctx, cfg.RPCURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Starknet network: %w", err)
	}

	p, err := NewProvider(client, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}

	// -- Verify connection and chain ID
	chainID, err := p.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if !chainID.Equal(cfg.ChainID()) {
		client.Close()
		return nil, fmt.Errorf("expected chain ID %s, got %s", cfg.ChainID(), chainID)
	}

	log.Info("Successfully connected to Starknet network", "chain_id", chainID)
	return p, nil
}

// NewProvider wraps an existing transport.
func NewProvider(client Caller, cfg Config) (*Provider, error) {
	receipts, err := lru.New[felt.Felt, *TransactionReceipt](cfg.ReceiptCacheSize())
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt cache: %w", err)
	}
	return &Provider{
		client:   client,
		config:   cfg,
		receipts: receipts,
	}, nil
}

func (p *Provider) ChainID(ctx context.Context) (*felt.Felt, error) {
	var chainID felt.Felt
	if err := p.client.CallContext(ctx, &chainID, "starknet_chainId"); err != nil {
		return nil, err
	}
	return &chainID, nil
}

func (p *Provider) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	if err := p.client.CallContext(ctx, &n, "starknet_blockNumber"); err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	return n, nil
}

func (p *Provider) Nonce(ctx context.Context, block BlockID, address *felt.Felt) (*felt.Felt, error) {
	var nonce felt.Felt
	if err := p.client.CallContext(ctx, &nonce, "starknet_getNonce", block, address); err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	return &nonce, nil
}

func (p *Provider) ClassHashAt(ctx context.Context, block BlockID, address *felt.Felt) (*felt.Felt, error) {
	var classHash felt.Felt
	if err := p.client.CallContext(ctx, &classHash, "starknet_getClassHashAt", block, address); err != nil {
		return nil, fmt.Errorf("failed to get class hash: %w", err)
	}
	return &classHash, nil
}

// Call runs a view entry point without creating a transaction.
func (p *Provider) Call(ctx context.Context, call FunctionCall, block BlockID) ([]*felt.Felt, error) {
	if call.Calldata == nil {
		call.Calldata = []*felt.Felt{}
	}
	var result []*felt.Felt
	if err := p.client.CallContext(ctx, &result, "starknet_call", call, block); err != nil {
		return nil, fmt.Errorf("failed to call contract: %w", err)
	}
	return result, nil
}

// BalanceOf reads an ERC-20 balance, returned by the token as a u256 split
// into low and high 128 bit halves.
func (p *Provider) BalanceOf(ctx context.Context, token, owner *felt.Felt) (*big.Int, error) {
	result, err := p.Call(ctx, NewFunctionCall(token, "balance_of", owner), BlockLatest)
	if err != nil {
		return nil, err
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected balance_of result length %d", len(result))
	}
	balance := new(big.Int).Lsh(felt.ToBigInt(result[1]), 128)
	return balance.Or(balance, felt.ToBigInt(result[0])), nil
}

func (p *Provider) TransactionStatus(ctx context.Context, hash *felt.Felt) (*TransactionStatus, error) {
	var status TransactionStatus
	if err := p.client.CallContext(ctx, &status, "starknet_getTransactionStatus", hash); err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}
	return &status, nil
}

// TransactionReceipt returns the receipt for a transaction if it exists.
// Receipts accepted on L1 are served from the cache afterwards.
func (p *Provider) TransactionReceipt(ctx context.Context, hash *felt.Felt) (*TransactionReceipt, error) {
	if receipt, ok := p.receipts.Get(*hash); ok {
		return receipt, nil
	}

	var receipt TransactionReceipt
	if err := p.client.CallContext(ctx, &receipt, "starknet_getTransactionReceipt", hash); err != nil {
		return nil, fmt.Errorf("transaction not found or pending: %w", err)
	}
	if receipt.FinalityStatus.IsFinal() {
		p.receipts.Add(*hash, &receipt)
	}
	return &receipt, nil
}

type addInvokeTransactionResult struct {
	TransactionHash *felt.Felt `json:"transaction_hash"`
}

// AddInvokeTransaction submits a signed invoke and returns its hash as
// computed by the node.
func (p *Provider) AddInvokeTransaction(ctx context.Context, tx *InvokeTransactionV3) (*felt.Felt, error) {
	log.Info("Sending transaction to network", "sender", tx.SenderAddress, "nonce", tx.Nonce)

	var result addInvokeTransactionResult
	if err := p.client.CallContext(ctx, &result, "starknet_addInvokeTransaction", tx); err != nil {
		log.Error("Failed to send transaction", "error", err)
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	if result.TransactionHash == nil {
		return nil, fmt.Errorf("node returned no transaction hash")
	}

	log.Info("Transaction sent successfully", "hash", result.TransactionHash)
	return result.TransactionHash, nil
}

// WaitForTransaction polls the transaction status until it is accepted,
// rejected or reverted, or until the configured timeout elapses.
func (p *Provider) WaitForTransaction(ctx context.Context, hash *felt.Felt) (*TransactionReceipt, error) {
	timeoutChan := time.After(p.config.TransactionTimeout())
	ticker := time.NewTicker(p.config.TransactionTickerInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeoutChan:
			return nil, fmt.Errorf("transaction timeout: %s", hash)
		case <-ticker.C:
			status, err := p.TransactionStatus(ctx, hash)
			if err != nil {
				// not yet known to the node
				log.Debug("Transaction status unavailable", "hash", hash, "error", err)
				continue
			}

			switch {
			case status.FinalityStatus == FinalityRejected:
				return nil, fmt.Errorf("%w: %s %s", ErrTransactionRejected, hash, status.FailureReason)
			case status.ExecutionStatus == ExecutionReverted:
				receipt, err := p.TransactionReceipt(ctx, hash)
				if err != nil {
					return nil, err
				}
				return receipt, fmt.Errorf("%w: %s %s", ErrTransactionReverted, hash, receipt.RevertReason)
			case status.FinalityStatus.IsAccepted():
				return p.TransactionReceipt(ctx, hash)
			}
		}
	}
}

// Close closes the underlying RPC connection
func (p *Provider) Close() {
	if p.client != nil {
		p.client.Close()
	}
}
