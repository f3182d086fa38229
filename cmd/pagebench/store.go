package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/pagecache/internal/config"
	"github.com/IvanBrykalov/pagecache/store"
	"github.com/IvanBrykalov/pagecache/store/filestore"
	"github.com/IvanBrykalov/pagecache/store/memstore"
	"github.com/IvanBrykalov/pagecache/store/sqlitestore"
)

// openStore builds the backing store named by cfg. The returned close func
// releases it and is never nil on success.
func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (store.FileManager, func() error, error) {
	switch cfg.Kind {
	case config.StoreMem:
		return memstore.New(), func() error { return nil }, nil
	case config.StoreFile:
		s, err := filestore.Open(cfg.Path, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("file store opened", zap.String("path", s.Path()))
		return s, s.Close, nil
	case config.StoreSQLite:
		s, err := sqlitestore.Open(ctx, cfg.Path, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("pagebench: unknown store %q", cfg.Kind)
}
