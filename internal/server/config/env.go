package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from the environment. A .env file in the
// working directory is loaded first; real environment variables win over it.
// Unset variables leave the current value untouched.
func parseEnv(config *Config) {
	// missing .env is fine, only explicit settings matter
	_ = godotenv.Load()

	setString(&config.EndpointAddr, "ETRANSLATION_ADDR")
	setString(&config.DatabaseDSN, "ETRANSLATION_DATABASE_DSN")
	setBool(&config.MigrateDatabase, "ETRANSLATION_MIGRATE")

	setString(&config.EncryptionKeyHex, "ETRANSLATION_ENCRYPTION_KEY")
	setString(&config.EncryptionPassphrase, "ETRANSLATION_ENCRYPTION_PASSPHRASE")
	setString(&config.EncryptionSalt, "ETRANSLATION_ENCRYPTION_SALT")

	if v, ok := os.LookupEnv("ETRANSLATION_LANGUAGES"); ok {
		config.Languages = splitLanguages(v)
	}

	setString(&config.AuthorityEndpoint, "ETRANSLATION_AUTHORITY_ENDPOINT")
	setString(&config.AuthorityApplication, "ETRANSLATION_AUTHORITY_APPLICATION")
	setString(&config.AuthorityPassword, "ETRANSLATION_AUTHORITY_PASSWORD")
	setString(&config.AuthorityDomain, "ETRANSLATION_AUTHORITY_DOMAIN")
	setString(&config.SuccessCallbackURL, "ETRANSLATION_SUCCESS_CALLBACK_URL")
	setString(&config.ErrorCallbackURL, "ETRANSLATION_ERROR_CALLBACK_URL")
	setDuration(&config.SendTimeout, "ETRANSLATION_SEND_TIMEOUT")

	setDuration(&config.DispatchPeriod, "ETRANSLATION_DISPATCH_PERIOD")
	setDuration(&config.BatchBudget, "ETRANSLATION_BATCH_BUDGET")
	setDuration(&config.FailureCooldown, "ETRANSLATION_FAILURE_COOLDOWN")
	setInt(&config.MaxFailureCount, "ETRANSLATION_MAX_FAILURE_COUNT")
}

func setString(target *string, name string) {
	if v, ok := os.LookupEnv(name); ok {
		*target = v
	}
}

func setBool(target *bool, name string) {
	if v, ok := os.LookupEnv(name); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*target = parsed
	}
}

func setInt(target *int, name string) {
	if v, ok := os.LookupEnv(name); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*target = parsed
	}
}

func setDuration(target *time.Duration, name string) {
	if v, ok := os.LookupEnv(name); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*target = parsed
	}
}
