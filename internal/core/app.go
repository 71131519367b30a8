package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/config"
	"github.com/takeoffhq/takeoff-go/internal/db"
)

// App holds the core components shared by every CLI command: the
// configuration, the local cache database and the API client.
type App struct {
	Config *config.Config
	DB     *sql.DB
	API    *client.Client
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the cache database, and running migrations.
func New() (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the cache database connection
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	if err := db.RunMigrations(database); err != nil {
		// We can't proceed without a valid cache schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Println("Core application setup complete.")
	return &App{
		Config: cfg,
		DB:     database,
		API:    client.New(cfg.APIBaseURL),
	}, nil
}

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
