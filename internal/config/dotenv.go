package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadDotEnv exports KEY=VALUE entries from the given files into the process
// environment. Variables that are already set take precedence and are not
// overwritten; missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		v := viper.New()
		v.SetConfigFile(p)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		for _, key := range v.AllKeys() {
			name := strings.ToUpper(key)
			val := v.GetString(key)
			if val == "" {
				continue
			}
			if _, set := os.LookupEnv(name); set {
				continue
			}
			if err := os.Setenv(name, val); err != nil {
				return fmt.Errorf("failed to export %s: %w", name, err)
			}
		}
	}
	return nil
}
