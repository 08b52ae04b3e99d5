package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mailDocument = `{
  "types": {
    "StarkNetDomain": [
      { "name": "name", "type": "felt" },
      { "name": "version", "type": "felt" },
      { "name": "chainId", "type": "felt" }
    ],
    "Person": [
      { "name": "name", "type": "felt" },
      { "name": "wallet", "type": "felt" }
    ],
    "Mail": [
      { "name": "from", "type": "Person" },
      { "name": "to", "type": "Person" },
      { "name": "contents", "type": "felt" }
    ]
  },
  "primaryType": "Mail",
  "domain": { "name": "StarkNet Mail", "version": "1", "chainId": 1 },
  "message": {
    "from": { "name": "Cow", "wallet": "0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826" },
    "to": { "name": "Bob", "wallet": "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB" },
    "contents": "Hello, Bob!"
  }
}`

func writeDocument(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestRun_WithAccountFlag(t *testing.T) {
	file = writeDocument(t, mailDocument)
	account = "0xcd2a3d9f938e13cd947ec05abc7fe734df8dd826"
	t.Cleanup(func() { file, account = "-", "" })

	var out bytes.Buffer
	require.NoError(t, run(&out))

	assert.Contains(t, out.String(), "revision:     0\n")
	assert.Contains(t, out.String(), "signable:     0x6fcff244f63e38b9d88b9e3378d44757710d1b244282b435cb472053c8d78d0\n")
}

func TestRun_WithConfiguredAccount(t *testing.T) {
	file = writeDocument(t, mailDocument)
	envFile = filepath.Join(t.TempDir(), "missing.env")
	label = "Ops"
	t.Cleanup(func() { file, envFile, label = "-", ".env", "" })

	t.Setenv("STARK_CHAIN_ID", "SN_SEPOLIA")
	t.Setenv("STARK_ACCOUNTS", "main,ops")
	t.Setenv("STARK_ACCOUNT_MAIN_ADDRESS", "0x1")
	t.Setenv("STARK_ACCOUNT_OPS_ADDRESS", "0xcd2a3d9f938e13cd947ec05abc7fe734df8dd826")

	var out bytes.Buffer
	require.NoError(t, run(&out))
	assert.Contains(t, out.String(), "0x6fcff244f63e38b9d88b9e3378d44757710d1b244282b435cb472053c8d78d0")
}

func TestRun_Errors(t *testing.T) {
	t.Cleanup(func() { file, account = "-", "" })

	file = filepath.Join(t.TempDir(), "nope.json")
	account = "0x1"
	assert.Error(t, run(&bytes.Buffer{}))

	file = writeDocument(t, `{"types": {}, "primaryType": "Mail", "domain": {}, "message": {}}`)
	assert.Error(t, run(&bytes.Buffer{}))

	file = writeDocument(t, mailDocument)
	account = "not-hex"
	assert.Error(t, run(&bytes.Buffer{}))
}
