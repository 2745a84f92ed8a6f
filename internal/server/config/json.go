package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/etranslation/server/internal/flagx"
	"github.com/etranslation/server/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. Interval fields use timex.Duration, which accepts
// both string values such as "15s" and integer nanoseconds. Fields are
// pointers so that only keys present in the file overwrite the defaults;
// after unmarshalling, the set fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr    *string `json:"endpoint_addr"`
	DatabaseDSN     *string `json:"database_dsn"`
	MigrateDatabase *bool   `json:"migrate_database"`

	EncryptionKeyHex     *string `json:"encryption_key_hex"`
	EncryptionPassphrase *string `json:"encryption_passphrase"`
	EncryptionSalt       *string `json:"encryption_salt"`

	Languages []string `json:"languages"`

	AuthorityEndpoint    *string         `json:"authority_endpoint"`
	AuthorityApplication *string         `json:"authority_application"`
	AuthorityPassword    *string         `json:"authority_password"`
	AuthorityDomain      *string         `json:"authority_domain"`
	SuccessCallbackURL   *string         `json:"success_callback_url"`
	ErrorCallbackURL     *string         `json:"error_callback_url"`
	SendTimeout          *timex.Duration `json:"send_timeout"`

	DispatchPeriod  *timex.Duration `json:"dispatch_period"`
	BatchBudget     *timex.Duration `json:"batch_budget"`
	FailureCooldown *timex.Duration `json:"failure_cooldown"`
	MaxFailureCount *int            `json:"max_failure_count"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. Keys absent from the
// file leave the current value untouched. Read or parse failures panic: a
// configuration file that was asked for but cannot be used is not something
// to start up with.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIfPresent(&config.EndpointAddr, c.EndpointAddr)
	setIfPresent(&config.DatabaseDSN, c.DatabaseDSN)
	setIfPresent(&config.MigrateDatabase, c.MigrateDatabase)
	setIfPresent(&config.EncryptionKeyHex, c.EncryptionKeyHex)
	setIfPresent(&config.EncryptionPassphrase, c.EncryptionPassphrase)
	setIfPresent(&config.EncryptionSalt, c.EncryptionSalt)
	if c.Languages != nil {
		config.Languages = c.Languages
	}
	setIfPresent(&config.AuthorityEndpoint, c.AuthorityEndpoint)
	setIfPresent(&config.AuthorityApplication, c.AuthorityApplication)
	setIfPresent(&config.AuthorityPassword, c.AuthorityPassword)
	setIfPresent(&config.AuthorityDomain, c.AuthorityDomain)
	setIfPresent(&config.SuccessCallbackURL, c.SuccessCallbackURL)
	setIfPresent(&config.ErrorCallbackURL, c.ErrorCallbackURL)
	setDurationIfPresent(&config.SendTimeout, c.SendTimeout)
	setDurationIfPresent(&config.DispatchPeriod, c.DispatchPeriod)
	setDurationIfPresent(&config.BatchBudget, c.BatchBudget)
	setDurationIfPresent(&config.FailureCooldown, c.FailureCooldown)
	setIfPresent(&config.MaxFailureCount, c.MaxFailureCount)
}

func setIfPresent[T any](target *T, value *T) {
	if value != nil {
		*target = *value
	}
}

func setDurationIfPresent(target *time.Duration, value *timex.Duration) {
	if value != nil {
		*target = value.Duration
	}
}
