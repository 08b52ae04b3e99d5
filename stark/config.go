package stark

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nando-os/ghost-stark/felt"
)

const (
	envRpcURL  = "STARK_RPC_URL"
	envChainID = "STARK_CHAIN_ID"

	// -- accounts
	envAccountsList        = "STARK_ACCOUNTS"
	envAccountAddressFmt   = "STARK_ACCOUNT_%s_ADDRESS"
	envAccountPublicKeyFmt = "STARK_ACCOUNT_%s_PUBLIC_KEY"

	// -- transaction monitoring
	envTransactionTimeout = "STARK_TRANSACTION_TIMEOUT_SECONDS"
	envTransactionTicker  = "STARK_TRANSACTION_TICKER_SECONDS"
	envReceiptCacheSize   = "STARK_RECEIPT_CACHE_SIZE"

	// -- fee configuration
	// Recommended settings:
	// Development/Testing:
	//   STARK_L2_GAS_BUFFER=2.0   # estimates on devnets move a lot
	// Production - Mainnet:
	//   STARK_L2_GAS_BUFFER=1.2
	envL2GasBuffer = "STARK_L2_GAS_BUFFER"
	// Upper bound of sum(max_amount * max_price_per_unit) in STRK (default: 5 STRK)
	envMaxFeeSTRK = "STARK_MAX_FEE_STRK"

	// --- Units and defaults ---
	FRI_DECIMALS = 18 // 1 STRK = 10^18 fri

	DEFAULT_L2_GAS_BUFFER = "1.5"
	DEFAULT_MAX_FEE_STRK  = "5"

	// --- Transaction monitoring defaults ---
	DEFAULT_TRANSACTION_TIMEOUT_SECONDS = 300 // 5 minutes
	DEFAULT_TRANSACTION_TICKER_SECONDS  = 3   // 3 seconds
	DEFAULT_RECEIPT_CACHE_SIZE          = 256
)

// Config is what the provider and client read their settings from.
type Config interface {
	ChainID() *felt.Felt
	RPCURL() string
	Accounts() []*Account
	TransactionTimeout() time.Duration
	TransactionTickerInterval() time.Duration
	L2GasBuffer() decimal.Decimal
	MaxFeeFri() *big.Int
	ReceiptCacheSize() int
}

var _ Config = (*config)(nil)

type config struct {
	chainId  *felt.Felt
	accounts []*Account
	rpcURL   string
}

func NewConfiguration() (*config, error) {

	chainIDStr := os.Getenv(envChainID)
	if chainIDStr == "" {
		return nil, fmt.Errorf("%s environment variable is not set", envChainID)
	}

	chainId, err := ParseChainID(chainIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envChainID, err)
	}

	accounts, err := loadAccountsFromEnv(chainId)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts found in %s environment variable", envAccountsList)
	}

	rpcURL := os.Getenv(envRpcURL)

	return &config{
		rpcURL:   rpcURL,
		chainId:  chainId,
		accounts: accounts,
	}, nil
}

// ParseChainID accepts a network short string such as SN_SEPOLIA, or its hex
// encoding.
func ParseChainID(s string) (*felt.Felt, error) {
	if felt.IsHex(s) {
		return felt.FromHex(s)
	}
	return felt.EncodeShortString(s)
}

func (c *config) ChainID() *felt.Felt {
	return c.chainId
}

func (c *config) Accounts() []*Account {
	return c.accounts
}

func (c *config) RPCURL() string {
	return c.rpcURL
}

// Account returns the account configured under label.
func (c *config) Account(label string) (*Account, error) {
	for _, a := range c.accounts {
		if strings.EqualFold(a.Label, label) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("account %q is not configured", label)
}

// L2GasBuffer returns the multiplier applied to the L2 gas max amount before
// signing (default: 1.5)
func (c *config) L2GasBuffer() decimal.Decimal {
	def := decimal.RequireFromString(DEFAULT_L2_GAS_BUFFER)
	bufferStr := os.Getenv(envL2GasBuffer)
	if bufferStr == "" {
		return def
	}

	buffer, err := decimal.NewFromString(bufferStr)
	if err != nil {
		return def // Fallback to default on parse error
	}

	// Ensure reasonable bounds (1.0 to 3.0)
	if buffer.LessThan(decimal.NewFromInt(1)) || buffer.GreaterThan(decimal.NewFromInt(3)) {
		return def
	}

	return buffer
}

// MaxFeeSTRK returns the fee cap in STRK (default: 5 STRK)
func (c *config) MaxFeeSTRK() decimal.Decimal {
	def := decimal.RequireFromString(DEFAULT_MAX_FEE_STRK)
	maxFeeStr := os.Getenv(envMaxFeeSTRK)
	if maxFeeStr == "" {
		return def
	}
	maxFee, err := decimal.NewFromString(maxFeeStr)
	if err != nil || !maxFee.IsPositive() {
		return def
	}
	return maxFee
}

// MaxFeeFri returns MaxFeeSTRK in fri, truncated to a whole number.
func (c *config) MaxFeeFri() *big.Int {
	return c.MaxFeeSTRK().Shift(FRI_DECIMALS).BigInt()
}

// TransactionTimeoutSeconds returns the transaction timeout in seconds (default: 300)
func (c *config) TransactionTimeoutSeconds() int {
	timeoutStr := os.Getenv(envTransactionTimeout)
	if timeoutStr == "" {
		return DEFAULT_TRANSACTION_TIMEOUT_SECONDS
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout <= 0 {
		return DEFAULT_TRANSACTION_TIMEOUT_SECONDS
	}
	return timeout
}

// TransactionTickerSeconds returns the status polling interval in seconds (default: 3)
func (c *config) TransactionTickerSeconds() int {
	tickerStr := os.Getenv(envTransactionTicker)
	if tickerStr == "" {
		return DEFAULT_TRANSACTION_TICKER_SECONDS
	}
	ticker, err := strconv.Atoi(tickerStr)
	if err != nil || ticker <= 0 {
		return DEFAULT_TRANSACTION_TICKER_SECONDS
	}
	return ticker
}

func (c *config) TransactionTimeout() time.Duration {
	return time.Duration(c.TransactionTimeoutSeconds()) * time.Second
}

func (c *config) TransactionTickerInterval() time.Duration {
	return time.Duration(c.TransactionTickerSeconds()) * time.Second
}

// ReceiptCacheSize returns how many finalized receipts the provider keeps (default: 256)
func (c *config) ReceiptCacheSize() int {
	sizeStr := os.Getenv(envReceiptCacheSize)
	if sizeStr == "" {
		return DEFAULT_RECEIPT_CACHE_SIZE
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 || size > 1<<16 {
		return DEFAULT_RECEIPT_CACHE_SIZE
	}
	return size
}

func loadAccountsFromEnv(chainID *felt.Felt) ([]*Account, error) {
	var accounts []*Account
	accountLabels := os.Getenv(envAccountsList)
	if accountLabels == "" {
		return nil, fmt.Errorf("%s env variable not set", envAccountsList)
	}
	labels := strings.Split(accountLabels, ",")
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		addrEnv := fmt.Sprintf(envAccountAddressFmt, strings.ToUpper(label))
		addrHex := os.Getenv(addrEnv)
		if addrHex == "" {
			return nil, fmt.Errorf("no address found for account[%s] in environment variables", label)
		}
		address, err := felt.FromHex(addrHex)
		if err != nil {
			return nil, fmt.Errorf("invalid address for %s: %w", label, err)
		}

		account := &Account{
			Address: address,
			ChainID: chainID,
			Label:   label,
		}

		// the public key is optional: without it the account can still be used
		// to hash typed data and read state
		pubkeyEnv := fmt.Sprintf(envAccountPublicKeyFmt, strings.ToUpper(label))
		if pubHex := os.Getenv(pubkeyEnv); pubHex != "" {
			pubKey, err := felt.FromHex(pubHex)
			if err != nil {
				return nil, fmt.Errorf("invalid public key for %s: %w", label, err)
			}
			account.PublicKey = pubKey
		}

		accounts = append(accounts, account)
	}
	return accounts, nil
}
