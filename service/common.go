package service

import (
	"fmt"

	"blogposts/app/config"
	"blogposts/app/repositories"
)

// openRepository opens the store selected by cfg.Store. The returned
// function releases everything that was opened.
func openRepository(cfg *config.Config) (repositories.PostRepository, func() error, error) {
	switch cfg.Store {
	case config.StoreBadger:
		store, err := repositories.OpenStore(cfg.DataDir, cfg.InMemory)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repositories.NewBadgerPostRepository(store.DB())
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		closeFn := func() error {
			if err := repo.Close(); err != nil {
				store.Close()
				return err
			}
			return store.Close()
		}
		return repo, closeFn, nil

	case config.StoreSQLite:
		dsn := cfg.SQLitePath
		if cfg.InMemory {
			dsn = ":memory:"
		}
		repo, err := repositories.NewSQLitePostRepository(dsn)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
