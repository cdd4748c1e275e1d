package phonecrawler

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// configService wraps a Viper instance reading a .env file plus the process
// environment.
type configService struct {
	v *viper.Viper
}

// newConfig creates a new instance of configService.
func newConfig() *configService {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	// A missing .env file is fine; everything can come from the environment.
	_ = v.ReadInConfig()

	return &configService{v: v}
}

// EnvString retrieves a string value, falling back to defaultValue when unset.
func (c *configService) EnvString(envName string, defaultValue ...string) string {
	value := c.v.Get(envName)
	if value != nil && fmt.Sprint(value) != "" {
		return fmt.Sprint(value)
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// EnvInt retrieves an integer value, falling back to defaultValue when unset.
func (c *configService) EnvInt(envName string, defaultValue int) int {
	if !c.v.IsSet(envName) || c.v.GetString(envName) == "" {
		return defaultValue
	}
	return c.v.GetInt(envName)
}

// EnvBool retrieves a boolean value, falling back to defaultValue when unset.
func (c *configService) EnvBool(envName string, defaultValue bool) bool {
	if !c.v.IsSet(envName) || c.v.GetString(envName) == "" {
		return defaultValue
	}
	return c.v.GetBool(envName)
}

// EnvDurationMs reads a millisecond count from the environment.
func (c *configService) EnvDurationMs(envName string, defaultValue time.Duration) time.Duration {
	if !c.v.IsSet(envName) || c.v.GetString(envName) == "" {
		return defaultValue
	}
	return time.Duration(c.v.GetInt(envName)) * time.Millisecond
}

// Add adds a configuration value to the application.
func (c *configService) Add(name string, value interface{}) {
	c.v.Set(name, value)
}
