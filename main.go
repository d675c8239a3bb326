package main

import (
	"github.com/joho/godotenv"

	"gastmanager/startup"
	"gastmanager/startup/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.NewConfig()
	server := startup.NewServer(cfg)
	server.Start()
}
