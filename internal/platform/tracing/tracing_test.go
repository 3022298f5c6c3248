package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"regdesk/internal/platform/config"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.Tracing{ServiceName: "regdesk"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
