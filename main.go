package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/openroom/roomchat-api/api/handlers"
	"github.com/openroom/roomchat-api/config"
)

func main() {
	_ = godotenv.Load()

	conf, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a := handlers.App{Config: *conf}
	if err := a.Initialize(); err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	a.Scheduler.Start()
	defer a.Scheduler.Stop()

	zap.S().Infow("roomchat-api is up and running",
		"port", conf.Port,
		"sweepInterval", conf.SweepInterval,
		"inactivityThreshold", conf.InactivityThreshold,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", conf.Port), a.Router))
}
