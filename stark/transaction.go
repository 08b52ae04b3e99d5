package stark

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/NethermindEth/juno/core/crypto"

	"github.com/nando-os/ghost-stark/felt"
)

const (
	transactionTypeInvoke = "INVOKE"
	transactionVersion3   = "0x3"
)

var (
	prefixInvoke = felt.MustFromHex("0x696e766f6b65") // "invoke"

	resourceL1Gas     = felt.MustFromHex("0x4c315f474153")   // "L1_GAS"
	resourceL2Gas     = felt.MustFromHex("0x4c325f474153")   // "L2_GAS"
	resourceL1DataGas = felt.MustFromHex("0x4c315f44415441") // "L1_DATA"

	maxU128 = new(big.Int).Lsh(big.NewInt(1), 128)
)

var ErrMissingNonce = errors.New("transaction nonce is not set")

// NewInvokeTransactionV3 returns an unsigned invoke for sender with every
// optional list initialised, so the JSON form never carries null arrays.
func NewInvokeTransactionV3(sender, nonce *felt.Felt, calldata []*felt.Felt, bounds ResourceBoundsMapping) *InvokeTransactionV3 {
	if calldata == nil {
		calldata = []*felt.Felt{}
	}
	return &InvokeTransactionV3{
		Type:                      transactionTypeInvoke,
		Version:                   transactionVersion3,
		SenderAddress:             sender,
		Calldata:                  calldata,
		Signature:                 []*felt.Felt{},
		Nonce:                     nonce,
		ResourceBounds:            bounds,
		PaymasterData:             []*felt.Felt{},
		AccountDeploymentData:     []*felt.Felt{},
		NonceDataAvailabilityMode: DAModeL1,
		FeeDataAvailabilityMode:   DAModeL1,
	}
}

// Hash computes the transaction hash the account contract validates the
// signature against.
func (tx *InvokeTransactionV3) Hash(chainID *felt.Felt) (*felt.Felt, error) {
	if tx.SenderAddress == nil {
		return nil, fmt.Errorf("transaction sender is not set")
	}
	if tx.Nonce == nil {
		return nil, ErrMissingNonce
	}

	feeHash, err := tx.feeFieldsHash()
	if err != nil {
		return nil, err
	}
	daModes, err := tx.dataAvailabilityModes()
	if err != nil {
		return nil, err
	}

	return crypto.PoseidonArray(
		prefixInvoke,
		felt.FromUint64(3),
		tx.SenderAddress,
		feeHash,
		crypto.PoseidonArray(tx.PaymasterData...),
		chainID,
		tx.Nonce,
		daModes,
		crypto.PoseidonArray(tx.AccountDeploymentData...),
		crypto.PoseidonArray(tx.Calldata...),
	), nil
}

func (tx *InvokeTransactionV3) feeFieldsHash() (*felt.Felt, error) {
	l1, err := encodeResourceBounds(resourceL1Gas, tx.ResourceBounds.L1Gas)
	if err != nil {
		return nil, fmt.Errorf("invalid l1_gas bounds: %w", err)
	}
	l2, err := encodeResourceBounds(resourceL2Gas, tx.ResourceBounds.L2Gas)
	if err != nil {
		return nil, fmt.Errorf("invalid l2_gas bounds: %w", err)
	}
	l1Data, err := encodeResourceBounds(resourceL1DataGas, tx.ResourceBounds.L1DataGas)
	if err != nil {
		return nil, fmt.Errorf("invalid l1_data_gas bounds: %w", err)
	}
	return crypto.PoseidonArray(felt.FromUint64(uint64(tx.Tip)), l1, l2, l1Data), nil
}

// dataAvailabilityModes packs nonce_mode << 32 | fee_mode.
func (tx *InvokeTransactionV3) dataAvailabilityModes() (*felt.Felt, error) {
	nonceMode, err := tx.NonceDataAvailabilityMode.value()
	if err != nil {
		return nil, err
	}
	feeMode, err := tx.FeeDataAvailabilityMode.value()
	if err != nil {
		return nil, err
	}
	return felt.FromUint64(nonceMode<<32 | feeMode), nil
}

// encodeResourceBounds packs name << 192 | max_amount << 128 | max_price.
func encodeResourceBounds(name *felt.Felt, b ResourceBounds) (*felt.Felt, error) {
	price := b.price()
	if price.Sign() < 0 || price.Cmp(maxU128) >= 0 {
		return nil, fmt.Errorf("max_price_per_unit %s does not fit in 128 bits", price)
	}

	packed := new(big.Int).Lsh(felt.ToBigInt(name), 192)
	packed.Or(packed, new(big.Int).Lsh(new(big.Int).SetUint64(uint64(b.MaxAmount)), 128))
	packed.Or(packed, price)
	return felt.FromBigInt(packed)
}

func (b ResourceBounds) price() *big.Int {
	if b.MaxPricePerUnit == nil {
		return new(big.Int)
	}
	return b.MaxPricePerUnit.ToInt()
}

// MaxFee is the most the bounds allow the sequencer to charge:
// sum(max_amount * max_price_per_unit) over every resource.
func (m ResourceBoundsMapping) MaxFee() *big.Int {
	total := new(big.Int)
	for _, b := range []ResourceBounds{m.L1Gas, m.L2Gas, m.L1DataGas} {
		total.Add(total, new(big.Int).Mul(new(big.Int).SetUint64(uint64(b.MaxAmount)), b.price()))
	}
	return total
}

// ExecuteCalls encodes calls as calldata for a Cairo 1 account's __execute__:
// the call count followed by to, selector, calldata length and calldata for
// each call.
func ExecuteCalls(calls []FunctionCall) []*felt.Felt {
	out := []*felt.Felt{felt.FromUint64(uint64(len(calls)))}
	for _, c := range calls {
		out = append(out, c.ContractAddress, c.EntryPointSelector, felt.FromUint64(uint64(len(c.Calldata))))
		out = append(out, c.Calldata...)
	}
	return out
}
