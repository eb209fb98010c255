package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/auth"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/config"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/db"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/mq"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/adapters/in/in_ws"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/adapters/in/transport"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/adapters/out/out_amqp"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/adapters/out/out_ws"
	appout "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/usecase"
)

// Run wires the tracking service together and blocks until ctx is done.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	pool, err := db.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close(pool, log)

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// The broker is optional: without it the service still ingests and
	// broadcasts to its own websocket subscribers.
	var eventPub appout.EventPublisher
	if cfg.RabbitMQ.Enabled {
		mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer mqConn.Close()

		if err := mq.SetupTopology(mqConn, log); err != nil {
			return fmt.Errorf("setup rabbitmq topology: %w", err)
		}
		eventPub = out_amqp.NewLocationRelay(mqConn, log)
	} else {
		log.Info("no rabbitmq host configured, location relay disabled")
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	busRepo := repoBundle(pool)
	viewerWS := in_ws.NewViewerWSHandler(jwtService, log)
	broadcaster := out_ws.NewLocationBroadcaster(viewerWS.Hub())

	handler := transport.NewHandler(
		usecase.NewUpdateLocationUseCase(busRepo.bus, busRepo.location, broadcaster, eventPub, log),
		usecase.NewGetLiveBusesUseCase(busRepo.bus),
		usecase.NewGetBusHistoryUseCase(busRepo.location),
		usecase.NewListRoutesUseCase(busRepo.route),
		usecase.NewGetActiveRouteUseCase(busRepo.route),
		log,
	)

	mux := http.NewServeMux()
	transport.Routes(mux, handler, viewerWS.ServeWS, jwtService, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      transport.LoggingMiddleware(log)(transport.RequestIDMiddleware(mux)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.WriteTimeout * 4,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down tracking service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	viewerWS.Hub().Shutdown(shutdownCtx)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info("tracking service stopped")
	return nil
}
