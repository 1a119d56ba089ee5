//go:build cli
// +build cli

package main

import (
	_ "tiresync/cron/jobs"
	_ "tiresync/custom"

	"tiresync/cmd"
	"tiresync/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
