package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "AETHERDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "AETHERDESK_DB_DSN"
	EnvDBHost = "AETHERDESK_DB_HOST"
	EnvDBUser = "AETHERDESK_DB_USER"
	EnvDBName = "AETHERDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
