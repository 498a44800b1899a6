package cli

import (
	"context"
	"io"

	"go.uber.org/zap"

	"kanban/internal/backend/rest"
	"kanban/internal/config"
	"kanban/internal/logging"
	"kanban/internal/service"
	"kanban/internal/session"
)

// RESTFactory returns a ServiceFactory for the kanban REST API. The session
// is kept in the config directory and debug logs go to errOut.
func RESTFactory(errOut io.Writer) ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		log := logging.New(errOut, cfg.Debug).Named("api")
		storage := session.NewFileStorage(cfg.SessionPath())

		return rest.New(cfg.APIURL, storage, rest.Options{
			Logger:  log,
			Timeout: cfg.Timeout,
			OnSignedOut: func() {
				log.Debug("session cleared", zap.String("path", storage.Path()))
			},
		})
	}
}
