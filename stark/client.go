package stark

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/shopspring/decimal"

	"github.com/nando-os/ghost-stark/felt"
	"github.com/nando-os/ghost-stark/typeddata"
)

var ErrReadOnlyAccount = errors.New("account has no signer")

// Signer produces account signatures over a hash. Key custody lives behind it.
type Signer interface {
	SignHash(ctx context.Context, hash *felt.Felt) ([]*felt.Felt, error)
}

type GhostClient interface {
	// TypedDataHash returns the SNIP-12 message hash of td for the client's account
	TypedDataHash(td *typeddata.TypedData) (*felt.Felt, error)

	// SignTypedData hashes td for the client's account and signs the hash
	SignTypedData(ctx context.Context, td *typeddata.TypedData) (*felt.Felt, []*felt.Felt, error)

	// Invoke signs and submits a multicall from the client's account
	Invoke(ctx context.Context, calls []FunctionCall, bounds ResourceBoundsMapping) (*felt.Felt, error)

	// WaitForTransaction waits for a transaction to be accepted and returns the receipt
	WaitForTransaction(ctx context.Context, hash *felt.Felt) (*TransactionReceipt, error)

	// Balance returns the account's balance of an ERC-20 token in base units
	Balance(ctx context.Context, token *felt.Felt) (*big.Int, error)

	// Close closes the Starknet client connection
	Close()
}

type ghostClient struct {
	provider *Provider
	account  *Account
	signer   Signer
	config   Config
}

// NewGhostClient binds account to provider. signer may be nil for an account
// that only hashes typed data and reads state.
func NewGhostClient(ctx context.Context, provider *Provider, account *Account, signer Signer, cfg Config) (GhostClient, error) {
	// -- validate account
	if account == nil || account.Address == nil {
		return nil, fmt.Errorf("account address is not set")
	}

	if account.ChainID == nil {
		return nil, fmt.Errorf("account chain ID is not set")
	}

	chainID, err := provider.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	// -- Check if chain ID matches the account
	if !chainID.Equal(account.ChainID) {
		return nil, fmt.Errorf("expected chain ID %s, got %s", account.ChainID, chainID)
	}

	log.Info("Starknet client ready", "chain_id", chainID, "account", account.Address, "label", account.Label)

	return &ghostClient{
		provider: provider,
		account:  account,
		signer:   signer,
		config:   cfg,
	}, nil
}

func (gc *ghostClient) TypedDataHash(td *typeddata.TypedData) (*felt.Felt, error) {
	hash, err := td.MessageHash(gc.account.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return hash, nil
}

func (gc *ghostClient) SignTypedData(ctx context.Context, td *typeddata.TypedData) (*felt.Felt, []*felt.Felt, error) {
	if gc.signer == nil {
		return nil, nil, ErrReadOnlyAccount
	}

	hash, err := gc.TypedDataHash(td)
	if err != nil {
		return nil, nil, err
	}

	log.Info("Signing typed data", "primary_type", td.PrimaryType(), "revision", td.Revision(), "hash", hash)
	signature, err := gc.signer.SignHash(ctx, hash)
	if err != nil {
		log.Error("Failed to sign typed data", "error", err)
		return nil, nil, fmt.Errorf("failed to sign typed data: %w", err)
	}
	return hash, signature, nil
}

func (gc *ghostClient) Invoke(ctx context.Context, calls []FunctionCall, bounds ResourceBoundsMapping) (*felt.Felt, error) {
	if gc.signer == nil {
		return nil, ErrReadOnlyAccount
	}
	if len(calls) == 0 {
		return nil, fmt.Errorf("no calls to invoke")
	}

	bounds = gc.applyL2GasBuffer(bounds)
	if err := gc.validateFee(bounds); err != nil {
		log.Error("Fee bounds rejected", "error", err)
		return nil, err
	}

	log.Info("Getting nonce for account", "address", gc.account.Address)
	nonce, err := gc.provider.Nonce(ctx, BlockPending, gc.account.Address)
	if err != nil {
		log.Error("Failed to get nonce", "error", err)
		return nil, err
	}
	log.Info("Got nonce", "nonce", nonce)

	tx := NewInvokeTransactionV3(gc.account.Address, nonce, ExecuteCalls(calls), bounds)
	hash, err := tx.Hash(gc.account.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to hash transaction: %w", err)
	}

	log.Info("Signing transaction", "hash", hash, "calls", len(calls))
	signature, err := gc.signer.SignHash(ctx, hash)
	if err != nil {
		log.Error("Failed to sign transaction", "error", err)
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	tx.Signature = signature

	sent, err := gc.provider.AddInvokeTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	if !sent.Equal(hash) {
		log.Warn("Node returned a different transaction hash", "local", hash, "node", sent)
	}
	return sent, nil
}

// applyL2GasBuffer scales the L2 gas amount by the configured buffer and
// fills missing prices with zero.
func (gc *ghostClient) applyL2GasBuffer(bounds ResourceBoundsMapping) ResourceBoundsMapping {
	buffer := gc.config.L2GasBuffer()
	amount := decimal.NewFromUint64(uint64(bounds.L2Gas.MaxAmount))
	buffered := amount.Mul(buffer).Ceil()
	if buffered.BigInt().IsUint64() {
		bounds.L2Gas.MaxAmount = hexutil.Uint64(buffered.BigInt().Uint64())
		log.Info("L2 gas amount calculated", "estimated", amount, "with_buffer", buffered)
	}

	for _, b := range []*ResourceBounds{&bounds.L1Gas, &bounds.L2Gas, &bounds.L1DataGas} {
		if b.MaxPricePerUnit == nil {
			b.MaxPricePerUnit = (*hexutil.Big)(new(big.Int))
		}
	}
	return bounds
}

// validateFee rejects bounds that would let the sequencer charge more than
// the configured cap.
func (gc *ghostClient) validateFee(bounds ResourceBoundsMapping) error {
	maxFee := bounds.MaxFee()
	maxAllowed := gc.config.MaxFeeFri()
	if maxFee.Cmp(maxAllowed) > 0 {
		return fmt.Errorf("max fee too high: %s STRK (cap %s STRK)", FormatSTRK(maxFee), FormatSTRK(maxAllowed))
	}
	return nil
}

func (gc *ghostClient) WaitForTransaction(ctx context.Context, hash *felt.Felt) (*TransactionReceipt, error) {
	return gc.provider.WaitForTransaction(ctx, hash)
}

func (gc *ghostClient) Balance(ctx context.Context, token *felt.Felt) (*big.Int, error) {
	balance, err := gc.provider.BalanceOf(ctx, token, gc.account.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// Close closes the Starknet client connection
func (gc *ghostClient) Close() {
	if gc.provider != nil {
		gc.provider.Close()
	}
}

// FormatSTRK renders an amount of fri as STRK.
func FormatSTRK(fri *big.Int) string {
	return decimal.NewFromBigInt(fri, -FRI_DECIMALS).String()
}
