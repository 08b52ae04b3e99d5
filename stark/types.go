package stark

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nando-os/ghost-stark/felt"
)

// High-level Starknet types and structures, for application-specific use
type Account struct {
	Address   *felt.Felt // Account contract address
	PublicKey *felt.Felt // Optional: Stark public key of the signer
	ChainID   *felt.Felt // Chain ID the account is used on
	Label     string     // Optional: human-readable label
}

// FinalityStatus is the acceptance stage of a transaction.
type FinalityStatus string

const (
	FinalityReceived     FinalityStatus = "RECEIVED"
	FinalityRejected     FinalityStatus = "REJECTED"
	FinalityAcceptedOnL2 FinalityStatus = "ACCEPTED_ON_L2"
	FinalityAcceptedOnL1 FinalityStatus = "ACCEPTED_ON_L1"
)

// IsAccepted reports whether the transaction made it into a block.
func (s FinalityStatus) IsAccepted() bool {
	return s == FinalityAcceptedOnL2 || s == FinalityAcceptedOnL1
}

// IsFinal reports whether the status can no longer change.
func (s FinalityStatus) IsFinal() bool {
	return s == FinalityAcceptedOnL1 || s == FinalityRejected
}

type ExecutionStatus string

const (
	ExecutionSucceeded ExecutionStatus = "SUCCEEDED"
	ExecutionReverted  ExecutionStatus = "REVERTED"
)

// TransactionStatus is the result of starknet_getTransactionStatus.
type TransactionStatus struct {
	FinalityStatus  FinalityStatus  `json:"finality_status"`
	ExecutionStatus ExecutionStatus `json:"execution_status,omitempty"`
	FailureReason   string          `json:"failure_reason,omitempty"`
}

// FeePayment is the fee actually charged, in the given unit (WEI or FRI).
type FeePayment struct {
	Amount *felt.Felt `json:"amount"`
	Unit   string     `json:"unit"`
}

type Event struct {
	FromAddress *felt.Felt   `json:"from_address"`
	Keys        []*felt.Felt `json:"keys"`
	Data        []*felt.Felt `json:"data"`
}

// TransactionReceipt represents transaction execution result
type TransactionReceipt struct {
	Type            string          `json:"type"`
	TransactionHash *felt.Felt      `json:"transaction_hash"`
	ActualFee       FeePayment      `json:"actual_fee"`
	ExecutionStatus ExecutionStatus `json:"execution_status"`
	FinalityStatus  FinalityStatus  `json:"finality_status"`
	BlockHash       *felt.Felt      `json:"block_hash,omitempty"`
	BlockNumber     uint64          `json:"block_number,omitempty"`
	RevertReason    string          `json:"revert_reason,omitempty"`
	Events          []Event         `json:"events"`
}

// ResourceBounds caps one resource: max_amount is a u64 and
// max_price_per_unit a u128.
type ResourceBounds struct {
	MaxAmount       hexutil.Uint64 `json:"max_amount"`
	MaxPricePerUnit *hexutil.Big   `json:"max_price_per_unit"`
}

type ResourceBoundsMapping struct {
	L1Gas     ResourceBounds `json:"l1_gas"`
	L2Gas     ResourceBounds `json:"l2_gas"`
	L1DataGas ResourceBounds `json:"l1_data_gas"`
}

// DataAvailabilityMode selects where nonce or fee state diffs are published.
type DataAvailabilityMode string

const (
	DAModeL1 DataAvailabilityMode = "L1"
	DAModeL2 DataAvailabilityMode = "L2"
)

func (m DataAvailabilityMode) value() (uint64, error) {
	switch m {
	case DAModeL1, "":
		return 0, nil
	case DAModeL2:
		return 1, nil
	}
	return 0, fmt.Errorf("unknown data availability mode %q", string(m))
}

// FunctionCall is a single contract entry point invocation.
type FunctionCall struct {
	ContractAddress    *felt.Felt   `json:"contract_address"`
	EntryPointSelector *felt.Felt   `json:"entry_point_selector"`
	Calldata           []*felt.Felt `json:"calldata"`
}

// NewFunctionCall builds a call to the named entry point of contract.
func NewFunctionCall(contract *felt.Felt, entryPoint string, calldata ...*felt.Felt) FunctionCall {
	if calldata == nil {
		calldata = []*felt.Felt{}
	}
	return FunctionCall{
		ContractAddress:    contract,
		EntryPointSelector: felt.Selector(entryPoint),
		Calldata:           calldata,
	}
}

// InvokeTransactionV3 is a version 3 INVOKE transaction as sent to
// starknet_addInvokeTransaction.
type InvokeTransactionV3 struct {
	Type                      string                `json:"type"`
	Version                   string                `json:"version"`
	SenderAddress             *felt.Felt            `json:"sender_address"`
	Calldata                  []*felt.Felt          `json:"calldata"`
	Signature                 []*felt.Felt          `json:"signature"`
	Nonce                     *felt.Felt            `json:"nonce"`
	ResourceBounds            ResourceBoundsMapping `json:"resource_bounds"`
	Tip                       hexutil.Uint64        `json:"tip"`
	PaymasterData             []*felt.Felt          `json:"paymaster_data"`
	AccountDeploymentData     []*felt.Felt          `json:"account_deployment_data"`
	NonceDataAvailabilityMode DataAvailabilityMode  `json:"nonce_data_availability_mode"`
	FeeDataAvailabilityMode   DataAvailabilityMode  `json:"fee_data_availability_mode"`
}

// BlockID names a block by tag, number or hash.
type BlockID struct {
	Tag    string
	Number *uint64
	Hash   *felt.Felt
}

var (
	BlockLatest  = BlockID{Tag: "latest"}
	BlockPending = BlockID{Tag: "pending"}
)

func WithBlockNumber(n uint64) BlockID {
	return BlockID{Number: &n}
}

func WithBlockHash(h *felt.Felt) BlockID {
	return BlockID{Hash: h}
}

func (b BlockID) MarshalJSON() ([]byte, error) {
	switch {
	case b.Hash != nil:
		return json.Marshal(map[string]*felt.Felt{"block_hash": b.Hash})
	case b.Number != nil:
		return json.Marshal(map[string]uint64{"block_number": *b.Number})
	case b.Tag != "":
		return json.Marshal(b.Tag)
	}
	return nil, fmt.Errorf("empty block id")
}
