package app

import (
	"context"
	"testing"
	"time"

	"github.com/godilite/survey-form/internal/submit"
	grpcsrv "github.com/godilite/survey-form/pkg/grpc/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestUpstreamHealthFlipsServingStatus(t *testing.T) {
	server, err := grpcsrv.New(
		grpcsrv.WithPort(0),
		grpcsrv.WithHealthServices(submit.UpstreamServiceName),
	)
	require.NoError(t, err)
	server.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: submit.UpstreamServiceName})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	reporter := upstreamHealth{server: server, service: submit.UpstreamServiceName}

	reporter.ReportUpstream(false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status())

	reporter.ReportUpstream(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status())
}
