/*
config.go Launcher configuration. One JSON file names the input documents, the output location,
the modelling options and the datastreams results are published to.
*/

package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/ohowland/dfl_launcher/internal/pkg/validation"
)

// StartingPointMode selects how the initial values of the dynamic models are obtained.
type StartingPointMode string

const (
	// Warm references the values of a solved load flow.
	Warm StartingPointMode = "WARM"
	// Flat computes initial values from the set points.
	Flat StartingPointMode = "FLAT"
)

const (
	defaultDsoVoltageLevel = 45.0
	defaultTfoVoltageLevel = 100.0
)

type Mongo struct {
	URI      string `json:"URI" validate:"required"`
	Port     string `json:"Port" validate:"required"`
	Database string `json:"Database" validate:"required"`
}

type NATS struct {
	Server string `json:"Server" validate:"required"`
	// Subject prefix of published definitions, "dfl" when empty.
	Subject string `json:"Subject"`
}

type MQTT struct {
	Broker   string `json:"Broker" validate:"required"`
	ClientID string `json:"ClientID"`
	// TopicPrefix of published definitions, "dfl" when empty.
	TopicPrefix string `json:"TopicPrefix"`
	QoS         byte   `json:"QoS" validate:"lte=2"`
}

type SQL struct {
	Driver   string `json:"Driver" validate:"oneof=mysql postgres"`
	Server   string `json:"Server" validate:"required"`
	Port     int    `json:"Port" validate:"gte=1,lte=65535"`
	Username string `json:"Username" validate:"required"`
	Password string `json:"Password"`
	Database string `json:"Database" validate:"required"`
}

// Webhook posts every definition to URL/<topic>/<id>.
type Webhook struct {
	URL string `json:"URL" validate:"required,url"`
}

type Web struct {
	Port int `json:"Port" validate:"gte=1,lte=65535"`
}

// Datastreams lists the optional result sinks. A nil entry is disabled.
type Datastreams struct {
	Mongo *Mongo `json:"Mongo"`
	MQTT  *MQTT  `json:"MQTT"`
	NATS  *NATS  `json:"NATS"`
	SQL   *SQL   `json:"SQL"`
	Web   *Web   `json:"Web"`

	Webhook *Webhook `json:"Webhook"`
}

// Config is the launcher configuration.
type Config struct {
	Network                string            `json:"Network" validate:"required"`
	Assembling             string            `json:"Assembling"`
	Setting                string            `json:"Setting"`
	OutputDir              string            `json:"OutputDir" validate:"required"`
	Basename               string            `json:"Basename" validate:"required"`
	InfiniteReactiveLimits bool              `json:"InfiniteReactiveLimits"`
	StartingPointMode      StartingPointMode `json:"StartingPointMode" validate:"oneof=WARM FLAT"`
	DsoVoltageLevel        float64           `json:"DsoVoltageLevel" validate:"gte=0"`
	TfoVoltageLevel        float64           `json:"TfoVoltageLevel" validate:"gte=0"`
	MetricsFile            string            `json:"MetricsFile"`
	Datastreams            Datastreams       `json:"Datastreams"`
}

// Default returns a configuration holding every default value.
func Default() Config {
	return Config{
		StartingPointMode: Warm,
		DsoVoltageLevel:   defaultDsoVoltageLevel,
		TfoVoltageLevel:   defaultTfoVoltageLevel,
	}
}

// Load reads the configuration at path. Relative document paths are resolved
// against the directory of the configuration file.
func Load(path string) (Config, error) {
	jsonConfig, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(jsonConfig)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.Network, &cfg.Assembling, &cfg.Setting, &cfg.OutputDir, &cfg.MetricsFile} {
		if *p != "" && !filepath.IsAbs(*p) && !isURL(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return cfg, nil
}

// Parse decodes and validates a JSON configuration.
func Parse(jsonConfig []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Datastreams.SQL != nil && cfg.Datastreams.SQL.Driver == "" {
		cfg.Datastreams.SQL.Driver = "mysql"
	}
	if err := validation.Struct(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func isURL(p string) bool {
	for i := 0; i < len(p)-2; i++ {
		if p[i] == ':' && p[i+1] == '/' && p[i+2] == '/' {
			return i > 0
		}
	}
	return false
}
