//go:build integration

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisBackendIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	backend, err := NewRedis(ctx, RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port()), MaxBytes: 32})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	scoped := Scope(backend, "profile-1")

	_, ok, err := scoped.GetItem(ctx, "cart")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, scoped.SetItem(ctx, "cart", `[]`))
	v, ok, err := scoped.GetItem(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[]`, v)

	require.ErrorIs(t, scoped.SetItem(ctx, "cart", fmt.Sprintf("%040d", 0)), ErrQuotaExceeded)

	require.NoError(t, scoped.RemoveItem(ctx, "cart"))
	_, ok, err = scoped.GetItem(ctx, "cart")
	require.NoError(t, err)
	require.False(t, ok)
}
