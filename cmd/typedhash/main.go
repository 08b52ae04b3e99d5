package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nando-os/ghost-stark/felt"
	"github.com/nando-os/ghost-stark/stark"
	"github.com/nando-os/ghost-stark/typeddata"
)

var (
	file    string
	account string
	label   string
	envFile string
	verbose bool
)

func main() {
	flag.StringVar(&file, "file", "-", "Typed data JSON document, - for stdin")
	flag.StringVar(&account, "account", "", "Account address the message is hashed for")
	flag.StringVar(&label, "label", "", "Configured account label to use when -account is not given")
	flag.StringVar(&envFile, "env", ".env", "Environment file with STARK_* settings")
	flag.BoolVar(&verbose, "verbose", false, "Print encoded type strings")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := run(os.Stdout); err != nil {
		logrus.WithError(err).Error("Failed to hash typed data")
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	data, err := readDocument(file)
	if err != nil {
		return err
	}

	td, err := typeddata.Parse(data)
	if err != nil {
		return fmt.Errorf("invalid typed data: %w", err)
	}

	address, err := resolveAccount()
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"primary_type": td.PrimaryType(),
		"revision":     td.Revision(),
		"account":      felt.Hex(address),
	}).Info("Hashing typed data")

	for _, name := range []string{td.Revision().DomainType(), td.PrimaryType()} {
		encoded, err := td.EncodeType(name)
		if err != nil {
			return err
		}
		typeHash, err := td.TypeHash(name)
		if err != nil {
			return err
		}
		logrus.WithField("type_hash", felt.Hex(typeHash)).Debug(encoded)
	}

	domainHash, err := td.DomainHash()
	if err != nil {
		return fmt.Errorf("failed to hash domain: %w", err)
	}
	structHash, err := td.MessageStructHash()
	if err != nil {
		return fmt.Errorf("failed to hash message: %w", err)
	}
	messageHash, err := td.MessageHash(address)
	if err != nil {
		return fmt.Errorf("failed to hash message: %w", err)
	}

	fmt.Fprintf(out, "revision:     %s\n", td.Revision())
	fmt.Fprintf(out, "domain hash:  %s\n", felt.Hex(domainHash))
	fmt.Fprintf(out, "message hash: %s\n", felt.Hex(structHash))
	fmt.Fprintf(out, "signable:     %s\n", felt.Hex(messageHash))
	return nil
}

func readDocument(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// resolveAccount prefers -account and otherwise falls back to the accounts
// configured through STARK_* variables.
func resolveAccount() (*felt.Felt, error) {
	if account != "" {
		address, err := felt.FromHex(account)
		if err != nil {
			return nil, fmt.Errorf("invalid -account: %w", err)
		}
		return address, nil
	}

	if err := godotenv.Load(envFile); err != nil {
		logrus.WithError(err).Debug("No environment file loaded")
	}
	cfg, err := stark.NewConfiguration()
	if err != nil {
		return nil, fmt.Errorf("no -account given and no configured account: %w", err)
	}
	if label != "" {
		acc, err := cfg.Account(label)
		if err != nil {
			return nil, err
		}
		return acc.Address, nil
	}
	return cfg.Accounts()[0].Address, nil
}
