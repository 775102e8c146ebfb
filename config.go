package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/adrg/xdg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/utilitywarehouse/ghopac/auth"
	"github.com/utilitywarehouse/ghopac/source"
	"github.com/utilitywarehouse/ghopac/syncpool"
	"gopkg.in/yaml.v3"
)

const appName = "ghopac"

var (
	// config files looked up in the XDG config dirs, in order
	configFileNames = []string{"config.yaml", "config.json"}

	errConfigNotFound = errors.New("config file not found")

	configSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ghopac_config_last_reload_successful",
		Help: "Whether the last configuration load attempt was successful.",
	})
	configSuccessTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ghopac_config_last_reload_success_timestamp_seconds",
		Help: "Timestamp of the last successful configuration load.",
	})
)

// OrgConfig maps a GitHub organisation to a local directory
type OrgConfig struct {
	Org  string `yaml:"org"`
	Path string `yaml:"path"`
}

type Config struct {
	GithubAccessToken       string `yaml:"github_access_token"`
	GithubAppID             string `yaml:"github_app_id"`
	GithubAppInstallationID string `yaml:"github_app_installation_id"`
	GithubAppPrivateKeyPath string `yaml:"github_app_private_key_path"`
	GithubAPIURL            string `yaml:"github_api_url"`

	CloneProtocol string `yaml:"clone_protocol"`
	SkipArchived  bool   `yaml:"skip_archived"`
	ReportOrphans bool   `yaml:"report_orphans"`

	Orgs       []OrgConfig `yaml:"orgs"`
	Syncpoints []string    `yaml:"syncpoints"`

	Concurrency int  `yaml:"concurrency"`
	Verbose     bool `yaml:"verbose"`
}

// defaultConfigPath is where a new config file is expected to be created
func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileNames[0])
}

// findConfigFile returns path if set otherwise it searches XDG config dirs
func findConfigFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %w", errConfigNotFound, err)
		}
		return path, nil
	}

	for _, name := range configFileNames {
		if p, err := xdg.SearchConfigFile(filepath.Join(appName, name)); err == nil {
			return p, nil
		}
	}
	return "", errConfigNotFound
}

func parseConfigFile(path string) (*Config, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(yamlFile); err != nil {
		return nil, err
	}

	conf := &Config{}
	if err := yaml.Unmarshal(yamlFile, conf); err != nil {
		return nil, err
	}

	applyDefaults(conf)

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// loadConfig parses config and records the result in config metrics
func loadConfig(path string) (*Config, error) {
	conf, err := parseConfigFile(path)
	if err != nil {
		configSuccess.Set(0)
		return nil, err
	}
	configSuccess.Set(1)
	configSuccessTime.SetToCurrentTime()
	return conf, nil
}

func applyDefaults(conf *Config) {
	if conf.CloneProtocol == "" {
		conf.CloneProtocol = source.ProtocolSSH
	}

	if conf.Concurrency <= 0 {
		conf.Concurrency = syncpool.DefaultConcurrency()
	}

	conf.GithubAppPrivateKeyPath = os.ExpandEnv(conf.GithubAppPrivateKeyPath)
	for i := range conf.Orgs {
		conf.Orgs[i].Path = os.ExpandEnv(conf.Orgs[i].Path)
	}
	for i := range conf.Syncpoints {
		conf.Syncpoints[i] = os.ExpandEnv(conf.Syncpoints[i])
	}
}

func (c *Config) validate() error {
	switch c.CloneProtocol {
	case source.ProtocolSSH, source.ProtocolHTTPS:
	default:
		return fmt.Errorf("invalid clone_protocol %q, must be %q or %q", c.CloneProtocol, source.ProtocolSSH, source.ProtocolHTTPS)
	}

	appFields := []string{c.GithubAppID, c.GithubAppInstallationID, c.GithubAppPrivateKeyPath}
	var set int
	for _, f := range appFields {
		if f != "" {
			set++
		}
	}
	if set != 0 && set != len(appFields) {
		return fmt.Errorf("github_app_id, github_app_installation_id and github_app_private_key_path must be set together")
	}

	for i, org := range c.Orgs {
		if org.Org == "" {
			return fmt.Errorf("org name is required for .orgs[%d]", i)
		}
		if org.Path == "" {
			return fmt.Errorf("path is required for .orgs[%d] (%s)", i, org.Org)
		}
	}

	for i, sp := range c.Syncpoints {
		if sp == "" {
			return fmt.Errorf("empty path at .syncpoints[%d]", i)
		}
	}
	return nil
}

func (c *Config) githubApp() *auth.GithubApp {
	if c.GithubAppID == "" {
		return nil
	}
	return &auth.GithubApp{
		AppID:          c.GithubAppID,
		InstallationID: c.GithubAppInstallationID,
		PrivateKeyPath: c.GithubAppPrivateKeyPath,
	}
}

func (c *Config) sourceConfig() source.Config {
	sc := source.Config{
		Syncpoints:    c.Syncpoints,
		CloneProtocol: c.CloneProtocol,
		SkipArchived:  c.SkipArchived,
		ReportOrphans: c.ReportOrphans,
	}
	for _, org := range c.Orgs {
		sc.Orgs = append(sc.Orgs, source.Org{Name: org.Org, Path: org.Path})
	}
	return sc
}

func validateConfig(yamlData []byte) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(yamlData, &raw); err != nil {
		return err
	}

	// check config sections for unexpected keys
	if key := findUnexpectedKey(raw, getAllowedKeys(Config{})); key != "" {
		return fmt.Errorf("unexpected key: .%v", key)
	}

	orgs, ok := raw["orgs"]
	if !ok || orgs == nil {
		return nil
	}

	orgsList, ok := orgs.([]interface{})
	if !ok {
		return fmt.Errorf("orgs config section is not valid")
	}

	allowedOrgKeys := getAllowedKeys(OrgConfig{})
	for i, orgInterface := range orgsList {
		orgMap, ok := orgInterface.(map[string]interface{})
		if !ok {
			return fmt.Errorf("orgs config section is not valid at .orgs[%d]", i)
		}
		if key := findUnexpectedKey(orgMap, allowedOrgKeys); key != "" {
			return fmt.Errorf("unexpected key: .orgs[%v].%v", orgMap["org"], key)
		}
	}

	return nil
}

// getAllowedKeys retrieves a list of allowed keys from the specified struct
func getAllowedKeys(config interface{}) []string {
	var allowedKeys []string
	val := reflect.ValueOf(config)
	typ := reflect.TypeOf(config)

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag != "" {
			allowedKeys = append(allowedKeys, yamlTag)
		}
	}
	return allowedKeys
}

func findUnexpectedKey(raw map[string]interface{}, allowedKeys []string) string {
	for key := range raw {
		if !slices.Contains(allowedKeys, key) {
			return key
		}
	}

	return ""
}

func sampleConfig() Config {
	return Config{
		GithubAccessToken: "Replace with a token from https://github.com/settings/tokens",
		CloneProtocol:     source.ProtocolSSH,
		Orgs:              []OrgConfig{{Org: "myorg", Path: "/myorg/source/directory"}},
		Syncpoints:        []string{"/some/other/directory"},
		Concurrency:       4,
		Verbose:           true,
	}
}

// printSampleConfig writes a sample config and where it should be placed
func printSampleConfig(w io.Writer, path string) error {
	out, err := yaml.Marshal(sampleConfig())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "No config file! Here's a sample you can put into %s:\n\n%s\n", path, out)
	return err
}
