package main

import (
	"flag"
	"fmt"
	"log"

	"fincontrol/internal/config"
	"fincontrol/internal/database"
	"fincontrol/internal/router"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	seedAdmin := flag.Bool("seed-admin", false, "create the admin user and exit")
	flag.Parse()

	// load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	if *seedAdmin {
		if err := database.SeedAdmin(db, cfg.Admin, cfg.Security.BcryptCost); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		log.Printf("admin user %s ready", cfg.Admin.Email)
		return
	}

	// setup router
	r := router.SetupRouter(cfg, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
