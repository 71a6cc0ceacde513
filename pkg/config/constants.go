package config

const (
	EnvPrefix = "ROI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ROI_DB_DSN"
	EnvDBHost = "ROI_DB_HOST"
	EnvDBUser = "ROI_DB_USER"
	EnvDBName = "ROI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
