package main

import (
	"context"
	"log"

	"github.com/echi/timecapsule/internal/server"
	"github.com/echi/timecapsule/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
