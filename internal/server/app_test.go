package server

import (
	"context"
	"database/sql"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/dmitrijs2005/filedo/internal/cryptox"
	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/logging"
	"github.com/dmitrijs2005/filedo/internal/server/config"
	"github.com/dmitrijs2005/filedo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filedo/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.LogLevel = "error"
	return c
}

func TestNewApp_MissingSecretKey(t *testing.T) {
	_, err := NewApp(context.Background(), testConfig())
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestNewApp_MalformedSecretKey(t *testing.T) {
	c := testConfig()
	c.SecretKey = "not a key"

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrMalformedKey)
}

func TestNewApp_UnsupportedDriver(t *testing.T) {
	c := testConfig()
	c.SecretKey = cryptox.GenerateKey()
	c.DatabaseDriver = "oracle"

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, dbx.ErrUnsupportedDriver)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	codec, err := cryptox.NewManifestCodec(cryptox.GenerateKey())
	require.NoError(t, err)

	c := testConfig()
	c.EndpointAddrHTTP = freeAddr(t)
	c.EndpointAddrGRPC = freeAddr(t)
	c.StagingDir = t.TempDir()

	app := &App{
		config:  c,
		logger:  logging.Nop(),
		db:      db,
		service: services.NewRetrievalService(db, &repomanager.MySQLRepositoryManager{}, codec, c),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", c.EndpointAddrHTTP)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}

	assert.Error(t, db.Ping(), "db should be closed after Run")
}
