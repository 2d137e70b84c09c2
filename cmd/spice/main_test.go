package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-sms/internal/common"
	"github.com/Veraticus/spice-sms/internal/model"
)

const swiggySMS = "Rs.500.00 debited from A/c XX1234 on 26-01-26 to VPA swiggy@upi"

const testBackup = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<smses count="3">
  <sms address="VM-HDFCBK" date="1769385600000" type="1" body="Rs.500.00 debited from A/c XX1234 on 26-01-26 to VPA swiggy@upi" />
  <sms address="AD-ICICIB" date="1769385700000" type="1" body="INR 15000 credited to your account" />
  <sms address="AD-OTPSVC" date="1769385800000" type="1" body="Your OTP is 123456" />
</smses>`

func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `database:
  path: ` + filepath.Join(dir, "spice.db") + `
logging:
  level: error
accounts:
  - id: cash
    name: Cash
    type: cash
  - id: hdfc-acc
    name: HDFC Savings
    account_number: "5010001234"
    type: bank
` + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func pendingItems(t *testing.T, cfgPath string) []model.PendingTransaction {
	t.Helper()
	out, err := runCLI(t, cfgPath, "", "pending", "list", "--json")
	require.NoError(t, err)

	var items []model.PendingTransaction
	require.NoError(t, json.Unmarshal([]byte(out), &items), out)
	return items
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, writeTestConfig(t, ""), "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "spice dev")
}

func TestParseAndSubmit(t *testing.T) {
	cfg := writeTestConfig(t, "")

	out, err := runCLI(t, cfg, "", "parse", swiggySMS)
	require.NoError(t, err)
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "hdfc-acc", "account suffix 1234 matches")
	assert.Empty(t, pendingItems(t, cfg))

	out, err = runCLI(t, cfg, swiggySMS, "parse", "--submit")
	require.NoError(t, err)
	assert.Contains(t, out, "Queued for review")

	out, err = runCLI(t, cfg, "", "parse", "--submit", swiggySMS)
	require.NoError(t, err)
	assert.Contains(t, out, "Already pending")
	assert.Len(t, pendingItems(t, cfg), 1)

	out, err = runCLI(t, cfg, "", "parse", "Your OTP is 123456")
	require.NoError(t, err)
	assert.Contains(t, out, "No transaction found")
}

func TestParseRequiresText(t *testing.T) {
	_, err := runCLI(t, writeTestConfig(t, ""), "   ", "parse")
	assert.Error(t, err)
}

func TestRulesLifecycle(t *testing.T) {
	cfg := writeTestConfig(t, "")

	out, err := runCLI(t, cfg, "", "rules", "add", "NETFLIX", "--category", "Entertainment", "--description", "Netflix")
	require.NoError(t, err)
	assert.Contains(t, out, "Added rule")

	_, err = runCLI(t, cfg, "", "rules", "add", "([broken", "--regex")
	assert.Error(t, err)

	out, err = runCLI(t, cfg, "", "rules", "test", "Your NETFLIX subscription of Rs 649 renewed")
	require.NoError(t, err)
	assert.Contains(t, out, "Matched")

	assert.Contains(t, out, "amount = 649.00")

	out, err = runCLI(t, cfg, "", "parse", "NETFLIX renewed")
	require.NoError(t, err)
	assert.Contains(t, out, "no amount")

	_, err = runCLI(t, cfg, "", "parse", "--submit", "NETFLIX renewed")
	assert.ErrorIs(t, err, common.ErrNoAmount)

	out, err = runCLI(t, cfg, "", "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NETFLIX")

	var id string
	for _, field := range strings.Fields(out) {
		if strings.Count(field, "-") == 4 {
			id = field
			break
		}
	}
	require.NotEmpty(t, id, out)

	_, err = runCLI(t, cfg, "", "rules", "delete", id)
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "", "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No rules yet")
}

func TestCategoriesLearnAndPredict(t *testing.T) {
	cfg := writeTestConfig(t, "")

	_, err := runCLI(t, cfg, "", "categories", "learn", "Sharma General Store", "Groceries")
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "", "categories", "predict", "sharma general store")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "80%")

	out, err = runCLI(t, cfg, "", "categories", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "1 descriptions remembered")
}

func TestBanksRememberAndForget(t *testing.T) {
	cfg := writeTestConfig(t, "")

	_, err := runCLI(t, cfg, "", "banks", "remember", "HDFC Bank", "hdfc-acc")
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "", "banks", "identify", "Money sent via hdfcbank netbanking")
	require.NoError(t, err)
	assert.Contains(t, out, "HDFC Bank")
	assert.Contains(t, out, "mapped to account hdfc-acc")

	_, err = runCLI(t, cfg, "", "banks", "forget", "HDFC Bank")
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "", "banks", "mappings")
	require.NoError(t, err)
	assert.Contains(t, out, "No mappings yet")
}

func TestScanAndReview(t *testing.T) {
	cfg := writeTestConfig(t, "")
	backup := filepath.Join(t.TempDir(), "sms.xml")
	require.NoError(t, os.WriteFile(backup, []byte(testBackup), 0o600))

	out, err := runCLI(t, cfg, "", "scan", backup, "--submit", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 3 messages")
	assert.Contains(t, out, "Queued 2 new transactions")

	out, err = runCLI(t, cfg, "d\nTravel\n", "pending", "review")
	require.NoError(t, err)
	assert.Contains(t, out, "Confirmed 1, dismissed 1.")
	assert.Empty(t, pendingItems(t, cfg))
}

func TestInvalidConfig(t *testing.T) {
	cfg := writeTestConfig(t, "accounts_default: nowhere\n")

	_, err := runCLI(t, cfg, "", "rules", "list")
	assert.Error(t, err)
}

func TestMigrateStatus(t *testing.T) {
	out, err := runCLI(t, writeTestConfig(t, ""), "", "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Latest")
}
