package source

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ErrLocatorNotFound indicates no sheet ID could be resolved.
var ErrLocatorNotFound = errors.New("dataset locator not found")

// LocatorKey is the variable naming the Google Sheet ID.
const LocatorKey = "SHEET_ID"

// LocatorFunc resolves the dataset identifier handed to the fetcher.
type LocatorFunc func() (string, error)

// StaticLocator always returns id.
func StaticLocator(id string) LocatorFunc {
	return func() (string, error) {
		if strings.TrimSpace(id) == "" {
			return "", ErrLocatorNotFound
		}
		return id, nil
	}
}

// EnvLocator resolves SHEET_ID from the process environment when ENV=PROD,
// otherwise from the dotenv file at dotenvPath.
func EnvLocator(dotenvPath string) LocatorFunc {
	return func() (string, error) {
		if strings.EqualFold(os.Getenv("ENV"), "PROD") {
			if id := strings.TrimSpace(os.Getenv(LocatorKey)); id != "" {
				return id, nil
			}
			return "", fmt.Errorf("%w: %s not set in environment", ErrLocatorNotFound, LocatorKey)
		}
		v := viper.New()
		v.SetConfigFile(dotenvPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("%w: read %s: %v", ErrLocatorNotFound, dotenvPath, err)
		}
		id := strings.TrimSpace(v.GetString(LocatorKey))
		if id == "" {
			return "", fmt.Errorf("%w: %s missing from %s", ErrLocatorNotFound, LocatorKey, dotenvPath)
		}
		return id, nil
	}
}

// LoadDatasetLocator resolves the sheet ID with the default ".env" file.
func LoadDatasetLocator() (string, error) {
	return EnvLocator(".env")()
}
