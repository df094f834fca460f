package main

import (
	"log"
	"mirrorbalance/cmd"
	"mirrorbalance/internal/logger"
	"os"
)

func main() {
	logger.Info("commit %s", os.Getenv("commit_hash"))
	apiHandler, secrets, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	err = apiHandler.StartApi(secrets.Api.Port)
	if err != nil {
		log.Fatal(err)
	}
}
