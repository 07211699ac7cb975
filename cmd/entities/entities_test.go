package entities

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fleetops/fleet-ledger/cmd/root"
	"fleetops/fleet-ledger/internal/config"
	"fleetops/fleet-ledger/internal/container"
	"fleetops/fleet-ledger/internal/logging"
	"fleetops/fleet-ledger/internal/models"
	"fleetops/fleet-ledger/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `vehicles:
  - id: v1
    plate_number: 12가3456
    model: Porter II
investors:
  - id: i1
    name: 김투자
    invest_amount: 10000000
    interest_rate: "12"
    payment_day: 25
consignments:
  - id: j1
    party_name: 박지입
    vehicle_id: v1
    active: false
`

func useTestContainer(t *testing.T) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Storage.Path = storage.MemoryPath
	cfg.Ingest.BatchSize = 30
	cfg.Ingest.HeaderScanRows = 20
	cfg.Ingest.CSVCharset = "utf-8"
	cfg.Extraction.Provider = config.ProviderHTTP
	cfg.Extraction.Endpoint = "http://localhost:8080/extract"
	cfg.Extraction.TimeoutSeconds = 5
	cfg.Schedule.DefaultDay = 10

	c, err := container.NewContainerWithLogger(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)

	original := root.AppContainer
	root.AppContainer = c
	t.Cleanup(func() {
		root.AppContainer = original
		_ = c.Close()
	})
	return c
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEntitiesCommand_Metadata(t *testing.T) {
	assert.Equal(t, "entities", Cmd.Use)
	assert.Len(t, Cmd.Commands(), 2)
	assert.NoError(t, importCmd.Args(importCmd, []string{"a.yaml"}))
	assert.Error(t, importCmd.Args(importCmd, nil))
}

func TestImportFunc(t *testing.T) {
	c := useTestContainer(t)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, importFunc(cmd, []string{writeFixture(t, fixture)}))
	assert.Equal(t, "Imported 1 vehicles, 1 investors, 1 consignment contracts\n", out.String())

	snap := c.GetRegistry().Snapshot()
	assert.True(t, snap.Contains(models.EntityRef{Type: models.EntityVehicle, ID: "v1"}))
	require.Len(t, snap.Investors, 1)
	assert.True(t, snap.Investors[0].InterestRate.Equal(decimal.NewFromInt(12)))
	assert.True(t, snap.Investors[0].Active)
	require.Len(t, snap.Consignments, 1)
	assert.False(t, snap.Consignments[0].Active)
}

func TestImportFunc_UpdatesExisting(t *testing.T) {
	c := useTestContainer(t)
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	require.NoError(t, importFunc(cmd, []string{writeFixture(t, fixture)}))
	require.NoError(t, importFunc(cmd, []string{writeFixture(t, `investors:
  - id: i1
    name: 김투자
    invest_amount: 20000000
    interest_rate: "6"
`)}))

	snap := c.GetRegistry().Snapshot()
	require.Len(t, snap.Investors, 1)
	assert.Equal(t, int64(20000000), snap.Investors[0].InvestAmount)
	assert.Len(t, snap.Vehicles, 1)
}

func TestImportFunc_Errors(t *testing.T) {
	c := useTestContainer(t)
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	assert.Error(t, importFunc(cmd, []string{filepath.Join(t.TempDir(), "missing.yaml")}))
	assert.Error(t, importFunc(cmd, []string{writeFixture(t, "vehicles: [")}))
	assert.Error(t, importFunc(cmd, []string{writeFixture(t, `investors:
  - id: i1
    name: 김투자
    interest_rate: "twelve"
`)}))
	assert.Equal(t, 0, c.GetRegistry().Snapshot().Size())
}

func TestListFunc(t *testing.T) {
	useTestContainer(t)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, listFunc(cmd, nil))
	assert.Equal(t, "No entities registered.\n", out.String())

	require.NoError(t, importFunc(cmd, []string{writeFixture(t, fixture)}))
	out.Reset()
	require.NoError(t, listFunc(cmd, nil))
	text := out.String()
	assert.Contains(t, text, "12가3456")
	assert.Contains(t, text, "김투자")
	assert.Contains(t, text, "12%")
	assert.Contains(t, text, "박지입")
	assert.Contains(t, text, "false")
}

func TestCommands_WithoutContainer(t *testing.T) {
	original := root.AppContainer
	root.AppContainer = nil
	defer func() { root.AppContainer = original }()

	cmd := &cobra.Command{}
	assert.Error(t, importFunc(cmd, []string{"entities.yaml"}))
	assert.Error(t, listFunc(cmd, nil))
}

func TestDayText(t *testing.T) {
	assert.Equal(t, "-", dayText(0))
	assert.Equal(t, "25", dayText(25))
}
