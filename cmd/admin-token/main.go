package main

import (
	"flag"
	"os"

	"github.com/louisbranch/crowdvault/internal/platform/config"
	"github.com/louisbranch/crowdvault/internal/tools/admintoken"
)

func main() {
	cfg, err := admintoken.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := admintoken.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("mint token: %v", err)
	}
}
