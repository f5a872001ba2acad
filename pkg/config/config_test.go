package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, uint64(51*1e16), cfg.Governance.SupportPct)
	assert.Equal(t, 24*time.Hour, cfg.Governance.QueuePeriod)
	assert.Equal(t, 6*time.Hour, cfg.Governance.BoostPeriod)
	assert.Equal(t, time.Hour, cfg.Governance.PendedBoostPeriod)
	assert.Equal(t, uint64(10), cfg.Governance.CompensationFeePct)
	assert.Equal(t, uint64(4), cfg.Governance.ConfidenceThresholdBase)
	assert.Equal(t, "engine:custody", cfg.Governance.CustodyAccount)
	assert.True(t, cfg.Poker.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
environment: production
log_level: warn
governance:
  support_pct: 600000000000000000
  queue_period: 48h
  boost_period: 3h
genesis:
  vote_balances:
    acct0: 100
    acct1: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(60*1e16), cfg.Governance.SupportPct)
	assert.Equal(t, 48*time.Hour, cfg.Governance.QueuePeriod)
	assert.Equal(t, 3*time.Hour, cfg.Governance.BoostPeriod)
	assert.Equal(t, uint64(100), cfg.Genesis.VoteBalances["acct0"])
	assert.False(t, cfg.IsDevelopment())
}

func TestValidateSupportBounds(t *testing.T) {
	path := writeConfig(t, `
governance:
  support_pct: 400000000000000000
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "below 50%")

	path = writeConfig(t, `
governance:
  support_pct: 1000000000000000000
`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "at or above 100%")
}

func TestValidateGovernancePeriods(t *testing.T) {
	path := writeConfig(t, `
governance:
  queue_period: 0s
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "queue_period")

	path = writeConfig(t, `
governance:
  pended_boost_period: 0s
`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "pended_boost_period")
}

func TestValidatePoker(t *testing.T) {
	path := writeConfig(t, `
poker:
  enabled: true
  fee_account: ""
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "fee_account")

	path = writeConfig(t, `
poker:
  enabled: false
  fee_account: ""
`)
	_, err = Load(path)
	assert.NoError(t, err)
}
