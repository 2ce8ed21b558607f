package conf

// Environment application environment
type Environment string

const (
	LocalEnvironmentEnum   Environment = "loc"
	MainnetEnvironmentEnum Environment = "prod"
	ExampleEnvironmentEnum Environment = "example"
)

// SystemEnvironmentEnum current environment, set from the -env flag before InitConfig
var SystemEnvironmentEnum = MainnetEnvironmentEnum

// GetYaml returns the config file path for the current environment
func GetYaml() string {
	switch SystemEnvironmentEnum {
	case LocalEnvironmentEnum:
		return "./config-loc.yaml"
	case ExampleEnvironmentEnum:
		return "./config-example.yaml"
	default:
		return "./config.yaml"
	}
}
