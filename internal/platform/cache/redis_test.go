package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewConnects(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := New(context.Background(), srv.Addr())
	require.NoError(t, err)
	defer func() {
		_ = client.Close()
	}()

	require.NoError(t, client.Set(context.Background(), "startup-check", "ok", 0).Err())
	got, err := client.Get(context.Background(), "startup-check").Result()
	require.NoError(t, err)
	require.Equal(t, "ok", got)
}

func TestNewUnreachableServer(t *testing.T) {
	_, err := New(context.Background(), "127.0.0.1:1")
	require.Error(t, err)
}
