package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nando-os/ghost-stark/felt"
	"github.com/nando-os/ghost-stark/stark"
	"github.com/nando-os/ghost-stark/typeddata"
)

// STRK token contract, identical on mainnet and Sepolia
var strkToken = felt.MustFromHex("0x4718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d")

const loginRequest = `{
  "types": {
    "StarknetDomain": [
      { "name": "name", "type": "shortstring" },
      { "name": "version", "type": "shortstring" },
      { "name": "chainId", "type": "shortstring" },
      { "name": "revision", "type": "shortstring" }
    ],
    "Login": [
      { "name": "Nonce", "type": "felt" },
      { "name": "Issued At", "type": "timestamp" },
      { "name": "Statement", "type": "string" }
    ]
  },
  "primaryType": "Login",
  "domain": { "name": "Ghost", "version": "1", "chainId": "SN_SEPOLIA", "revision": "1" },
  "message": {
    "Nonce": "0x2a",
    "Issued At": 1735689600,
    "Statement": "Sign in to Ghost with your Starknet account"
  }
}`

func setup() {
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Printf("Warning: error loading .env file: %+v\n", err)
		return
	}

	// To test TOR proxy functionality, set these environment variables:
	// HTTP_PROXY=socks5://127.0.0.1:9050
	// HTTPS_PROXY=socks5://127.0.0.1:9050

	// Log environment variables for debugging
	fmt.Printf("Environment check:\n")
	fmt.Printf("  STARK_RPC_URL: %s\n", os.Getenv("STARK_RPC_URL"))
	fmt.Printf("  STARK_CHAIN_ID: %s\n", os.Getenv("STARK_CHAIN_ID"))
	fmt.Printf("  HTTP_PROXY: %s\n", os.Getenv("HTTP_PROXY"))
	fmt.Printf("  HTTPS_PROXY: %s\n", os.Getenv("HTTPS_PROXY"))
	fmt.Printf("  STARK_ACCOUNTS: %s\n", os.Getenv("STARK_ACCOUNTS"))
}

func main() {
	// --- Setup ---
	setup()
	ctx := context.Background()

	// --- Load Configuration ---
	fmt.Println("Loading configuration...")
	config, err := stark.NewConfiguration()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	fmt.Printf("Configuration loaded successfully. Chain ID: %s\n", config.ChainID())

	// --- Get Account ---
	accounts := config.Accounts()
	fmt.Printf("Found %d accounts\n", len(accounts))
	sender := accounts[0]
	fmt.Printf("Account: %s\n", felt.Hex(sender.Address))

	// --- Create client ---
	fmt.Println("Connecting to Starknet...")
	provider, err := stark.Dial(ctx, config)
	if err != nil {
		log.Fatal("Failed to connect:", err)
	}

	// Without a signer the client hashes and reads but cannot send
	client, err := stark.NewGhostClient(ctx, provider, sender, nil, config)
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}
	defer client.Close()
	fmt.Println("Starknet client created successfully")

	block, err := provider.BlockNumber(ctx)
	if err != nil {
		log.Fatal("Failed to get block number:", err)
	}
	fmt.Printf("Latest block: %d\n", block)

	classHash, err := provider.ClassHashAt(ctx, stark.BlockLatest, sender.Address)
	if err != nil {
		fmt.Printf("Account is not deployed: %v\n", err)
	} else {
		fmt.Printf("Account class hash: %s\n", felt.Hex(classHash))
	}

	// --- Hash a sign-in request ---
	td, err := typeddata.Parse([]byte(loginRequest))
	if err != nil {
		log.Fatal("Invalid typed data:", err)
	}
	hash, err := client.TypedDataHash(td)
	if err != nil {
		log.Fatal("Failed to hash typed data:", err)
	}
	fmt.Printf("Login message hash (revision %s): %s\n", td.Revision(), felt.Hex(hash))

	// --- Check Balance ---
	fmt.Println("Checking balance...")
	balance, err := client.Balance(ctx, strkToken)
	if err != nil {
		fmt.Printf("Failed to get balance: %v\n", err)
	} else {
		fmt.Printf("Current balance: %s STRK\n", stark.FormatSTRK(balance))
	}
}
