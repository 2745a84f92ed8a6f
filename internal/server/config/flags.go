package config

import (
	"flag"
	"os"
	"time"

	"github.com/etranslation/server/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-k string   encryption key, 64 hex characters
//	-m bool     run database migrations on startup
//	-l string   comma-separated language codes
//	-e string   authority endpoint URL
//	-u string   authority application name
//	-p string   authority password
//	-t int      dispatch period, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-m", "-l", "-e", "-u", "-p", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.EncryptionKeyHex, "k", config.EncryptionKeyHex, "encryption key (hex)")
	fs.BoolVar(&config.MigrateDatabase, "m", config.MigrateDatabase, "run database migrations on startup")

	languages := fs.String("l", "", "comma-separated language codes")

	fs.StringVar(&config.AuthorityEndpoint, "e", config.AuthorityEndpoint, "authority endpoint URL")
	fs.StringVar(&config.AuthorityApplication, "u", config.AuthorityApplication, "authority application name")
	fs.StringVar(&config.AuthorityPassword, "p", config.AuthorityPassword, "authority password")

	dispatchPeriod := fs.Int("t", int(config.DispatchPeriod.Seconds()), "dispatch period (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *languages != "" {
		config.Languages = splitLanguages(*languages)
	}
	config.DispatchPeriod = time.Duration(*dispatchPeriod) * time.Second
}
