package httpapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"jobkonnect.org/internal/obs"
)

// HealthServer publishes readiness over the standard grpc.health.v1 service,
// both for the empty service name and for serviceName.
type HealthServer struct {
	*health.Server
	readiness readinessChecker
}

func NewHealthServer(r readinessChecker) *HealthServer {
	h := &HealthServer{Server: health.NewServer(), readiness: r}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service to srv.
func (h *HealthServer) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.Server)
}

// Refresh runs the readiness check and updates the served status.
func (h *HealthServer) Refresh(ctx context.Context) error {
	if err := h.readiness.Check(ctx); err != nil {
		obs.Logger().Warn().Err(err).Str("component", "health").Msg("readiness check failed")
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return err
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
	return nil
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.SetServingStatus("", status)
	h.SetServingStatus(serviceName, status)
}
