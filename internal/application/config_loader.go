package application

import (
	"encoding/json"
	"fmt"
	"os"

	unleash "github.com/Unleash/unleash-proxy-client-go"
	"github.com/Unleash/unleash-proxy-client-go/config"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// LoadConfig builds the configuration described by the command-line options: defaults, then the
// file if any, then environment variables if requested. The result is validated.
func LoadConfig(o Options, loggers ldlog.Loggers) (config.Config, error) {
	c := config.DefaultConfig()
	if o.ConfigFile != "" {
		if err := config.LoadConfigFile(&c, o.ConfigFile, loggers); err != nil {
			return c, err
		}
	}
	if o.UseEnvironment {
		if err := config.LoadConfigFromEnvironment(&c, loggers); err != nil {
			return c, err
		}
	}
	if err := config.ValidateConfig(&c, loggers); err != nil {
		return c, err
	}
	return c, nil
}

// LoadBootstrapFile reads a JSON array of toggles.
func LoadBootstrapFile(path string) ([]unleash.Toggle, error) {
	data, err := os.ReadFile(path) //nolint:gosec // the path comes from the configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap file %q: %w", path, err)
	}
	var toggles []unleash.Toggle
	if err := json.Unmarshal(data, &toggles); err != nil {
		return nil, fmt.Errorf("bootstrap file %q is not a JSON array of toggles: %w", path, err)
	}
	return toggles, nil
}

// LoadContextFile reads a JSON context document.
func LoadContextFile(path string) (unleash.Context, error) {
	var ret unleash.Context
	data, err := os.ReadFile(path) //nolint:gosec // the path comes from the configuration
	if err != nil {
		return ret, fmt.Errorf("failed to read context file %q: %w", path, err)
	}
	if err := json.Unmarshal(data, &ret); err != nil {
		return ret, fmt.Errorf("context file %q is not a valid context document: %w", path, err)
	}
	return ret, nil
}
