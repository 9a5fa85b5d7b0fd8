package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/config"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:     config.AppConfig{Name: "freshvilla-test", Company: "FreshVilla", Timezone: "Asia/Kolkata"},
		DB:      config.DBConfig{InMemory: true},
		Storage: config.StorageConfig{Driver: "local", LocalDir: t.TempDir()},
		Billing: config.BillingConfig{InvoicePrefix: "INV", TransferPrefix: "STR", NumberingMaxRetries: 3},
	}
}

func TestBuild_EnMemoria(t *testing.T) {
	app, err := Build(context.Background(), memoryConfig(t), logger.Nop(), Options{Migrate: true})
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Invoices)
	assert.NotNil(t, app.Transfers)
	assert.NotNil(t, app.GST)
	assert.NotNil(t, app.Stock)
	assert.Empty(t, app.closers, "sin pool, Redis ni Kafka no hay nada que cerrar")
}

func TestBuild_StorageDesconocido(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Driver = "s3"

	app, err := Build(context.Background(), cfg, logger.Nop(), Options{})
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "s3")
}

func TestApp_CloseEnOrdenInverso(t *testing.T) {
	var order []string
	app := &App{closers: []func(){
		func() { order = append(order, "pool") },
		func() { order = append(order, "redis") },
		func() { order = append(order, "kafka") },
	}}
	app.Close()
	assert.Equal(t, []string{"kafka", "redis", "pool"}, order)
}
