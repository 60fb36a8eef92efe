package util

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig reads the yaml config file at configPath into the global viper instance.
func ReadConfig(configPath string) error {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
