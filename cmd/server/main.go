package main

import (
	"github.com/chasm-hq/chasm/internal/server"
	"github.com/chasm-hq/chasm/internal/util"
	"github.com/chasm-hq/chasm/pkg/logger"
	"github.com/chasm-hq/chasm/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Prefix: "api",
	})
	logger.Init(consoleLogger)

	server.Init()
}
