package main

import (
	"go-departure-scheduler/core/logger"
	"go-departure-scheduler/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
