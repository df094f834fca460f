package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeMockSecrets(t *testing.T, extra string) string {
	path := filepath.Join(t.TempDir(), "secrets.json")
	body := `{
		"provider": "mock",
		"primaryAccount": "main",
		"secondaryAccount": "iis"` + extra + `
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCli(t *testing.T, args ...string) (string, error) {
	root := NewRootCommand()
	out := bytes.Buffer{}
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRebalanceCommand(t *testing.T) {
	t.Run("text report", func(t *testing.T) {
		out, err := runCli(t, "--secrets", writeMockSecrets(t, ""), "rebalance")
		require.NoError(t, err)
		require.Equal(t,
			"Сбер Банк: 2.00\n"+
				"Тинькофф iMOEX: 325.00\n"+
				"unresolved (cash?): -3000.00\n"+
				"ЛУКОЙЛ: -1.00\n",
			out,
		)
	})

	t.Run("csv report to a file", func(t *testing.T) {
		outFile := filepath.Join(t.TempDir(), "report.csv")
		_, err := runCli(t, "--secrets", writeMockSecrets(t, ""), "rebalance", "-f", "csv", "-o", outFile)
		require.NoError(t, err)

		b, err := os.ReadFile(outFile)
		require.NoError(t, err)
		require.Contains(t, string(b), "BBG004730N88,Сбер Банк,6750.00,2,true")
	})

	t.Run("unknown primary account", func(t *testing.T) {
		_, err := runCli(t, "--secrets", writeMockSecrets(t, `, "primaryFilter": "quantity > 0"`), "rebalance")
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "secrets.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"provider": "mock", "primaryAccount": "nope", "secondaryAccount": "iis"}`), 0o600))
		_, err = runCli(t, "--secrets", path, "rebalance")
		require.ErrorContains(t, err, "not found")
	})

	t.Run("email without ses", func(t *testing.T) {
		_, err := runCli(t, "--secrets", writeMockSecrets(t, ""), "rebalance", "--email")
		require.ErrorContains(t, err, "ses is not configured")
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := runCli(t, "--secrets", writeMockSecrets(t, ""), "rebalance", "-f", "pdf")
		require.Error(t, err)
	})

	t.Run("bad filter expression", func(t *testing.T) {
		_, err := runCli(t, "--secrets", writeMockSecrets(t, `, "primaryFilter": "quantity >"`), "rebalance")
		require.ErrorContains(t, err, "invalid primaryFilter")
	})
}

func TestAccountsCommand(t *testing.T) {
	out, err := runCli(t, "--secrets", writeMockSecrets(t, ""), "accounts")
	require.NoError(t, err)
	require.Equal(t, "iis\t2000222\nmain\t2000111\n", out)
}
