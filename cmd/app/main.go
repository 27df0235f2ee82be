package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/linkstash/linkstash-back/internal/auth"
	"github.com/linkstash/linkstash-back/internal/config"
	"github.com/linkstash/linkstash-back/internal/db"
	"github.com/linkstash/linkstash-back/internal/rpc"
	"github.com/linkstash/linkstash-back/internal/service"
	"github.com/linkstash/linkstash-back/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			NewLogger,
			db.NewGormClient,
			db.NewUserStore,
			db.NewBookmarkStore,
			func(s *db.UserStore) auth.IdentityStore { return s },
			func(s *db.UserStore) service.ProfileStore { return s },
			func(s *db.BookmarkStore) service.BookmarkStore { return s },
			auth.NewBcryptHasher,
			auth.NewTokenService,
			auth.NewCore,
			service.NewBookmarks,
			service.NewUsers,
			transport.NewHTTPServer,
		),
		rpc.Module,
		fx.Invoke(func(*transport.HTTPServer, *grpc.Server) {}),
	)

	app.Run()
}

func NewLogger() (*zap.SugaredLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
