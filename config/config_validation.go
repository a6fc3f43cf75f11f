package config

import (
	"errors"
	"fmt"
	"strings"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

var (
	errMissingURL          = errors.New("you have to specify the url")
	errMissingClientKey    = errors.New("you have to specify the clientKey")
	errMissingAppName      = errors.New("you have to specify the appName")
	errNegativeDuration    = errors.New("duration must not be negative")
	errProxyAuthWithoutURL = errors.New("cannot specify proxy authentication without a proxy URL")
	errDynamoDBPartialKeys = errors.New("DynamoDB access key ID and secret access key must be specified together")
)

func errMultipleStorageBackends(backends []string) error {
	return fmt.Errorf("multiple storage backends are enabled (%s); only one is allowed", strings.Join(backends, ", "))
}

// ValidateConfig ensures that the configuration contains the required properties and does not contain
// contradictory ones.
//
// It may modify the Config struct to canonicalize settings (trimming whitespace from identifiers). LoadConfigFromEnvironment and LoadConfigFile both call this method as a last step,
// and the client constructor calls it again, since a Config can also be built programmatically.
func ValidateConfig(c *Config, loggers ldlog.Loggers) error {
	var result ct.ValidationResult

	validateConfigMain(&result, c)
	validateConfigDurations(&result, c)
	validateConfigStorage(&result, c, loggers)
	validateConfigProxy(&result, c)

	return result.GetError()
}

func validateConfigMain(result *ct.ValidationResult, c *Config) {
	c.Main.ClientKey = strings.TrimSpace(c.Main.ClientKey)
	c.Main.AppName = strings.TrimSpace(c.Main.AppName)

	if !c.Main.URL.IsDefined() {
		result.AddError(nil, errMissingURL)
	}
	if c.Main.ClientKey == "" {
		result.AddError(nil, errMissingClientKey)
	}
	if c.Main.AppName == "" {
		result.AddError(nil, errMissingAppName)
	}
	if _, err := ParseCustomHeaders(c.Main.CustomHeaders); err != nil {
		result.AddError(ct.ValidationPath{"Main", "CustomHeaders"}, err)
	}
	if _, err := ParseContextProperties(c.Context.Properties); err != nil {
		result.AddError(ct.ValidationPath{"Context", "Properties"}, err)
	}
}

func validateConfigDurations(result *ct.ValidationResult, c *Config) {
	durations := []struct {
		path  ct.ValidationPath
		value ct.OptDuration
	}{
		{ct.ValidationPath{"Refresh", "Interval"}, c.Refresh.Interval},
		{ct.ValidationPath{"Refresh", "TogglesStorageTTL"}, c.Refresh.TogglesStorageTTL},
		{ct.ValidationPath{"Metrics", "Interval"}, c.Metrics.Interval},
		{ct.ValidationPath{"Metrics", "IntervalInitial"}, c.Metrics.IntervalInitial},
		{ct.ValidationPath{"Proxy", "RequestTimeout"}, c.Proxy.RequestTimeout},
	}
	for _, d := range durations {
		if d.value.IsDefined() && d.value.GetOrElse(0) < 0 {
			result.AddError(d.path, errNegativeDuration)
		}
	}
}

func validateConfigStorage(result *ct.ValidationResult, c *Config, loggers ldlog.Loggers) {
	var backends []string
	if c.File.Dir != "" {
		backends = append(backends, "file")
	}
	if c.Redis.URL.IsDefined() {
		backends = append(backends, "Redis")
	}
	if c.Consul.Host != "" {
		backends = append(backends, "Consul")
	}
	if c.DynamoDB.Enabled {
		backends = append(backends, "DynamoDB")
		if (c.DynamoDB.AccessKeyID == "") != (c.DynamoDB.SecretAccessKey == "") {
			result.AddError(nil, errDynamoDBPartialKeys)
		}
	}
	if len(backends) > 1 {
		result.AddError(nil, errMultipleStorageBackends(backends))
	}
	if len(backends) == 0 && c.Refresh.TogglesStorageTTL.GetOrElse(0) > 0 {
		loggers.Warn("TogglesStorageTTL is set but no persistent storage is configured; it will only apply within this process")
	}
}

func validateConfigProxy(result *ct.ValidationResult, c *Config) {
	if !c.Proxy.URL.IsDefined() && (c.Proxy.User != "" || c.Proxy.Password != "") {
		result.AddError(nil, errProxyAuthWithoutURL)
	}
}
