package app

import (
	"fmt"
	"os"

	"github.com/Brandon541/BBS/internal/config"
	"github.com/Brandon541/BBS/internal/db"
	"github.com/Brandon541/BBS/internal/message"
	"github.com/Brandon541/BBS/internal/user"
)

type App struct {
	ConfigPath string
	Config     *config.Config
	DBPath     string
	DB         *db.DB

	Users    *user.Repo
	Messages *message.Repo
}

func New(configPath string) (*App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.Paths.Data, 0755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	database, err := db.Open(cfg.Paths.Database)
	if err != nil {
		return nil, nil, err
	}

	a := &App{
		ConfigPath: configPath,
		Config:     cfg,
		DBPath:     cfg.Paths.Database,
		DB:         database,
		Users:      user.NewRepo(database.DB),
		Messages:   message.NewRepo(database.DB),
	}

	cleanup := func() {
		_ = database.Close()
	}

	return a, cleanup, nil
}
