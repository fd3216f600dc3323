package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "CALINVOICE_"

var ErrMissingClientId = errors.New("google.clientid is not configured")

type Application struct {
	Google   Google   `koanf:"google"`
	Auth     Auth     `koanf:"auth"`
	Fetch    Fetch    `koanf:"fetch"`
	Export   Export   `koanf:"export"`
	Timezone Timezone `koanf:"timezone"`
	Log      Log      `koanf:"log"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Auth struct {
	// Listen is the address of the local redirect listener. Port 0 picks a free port.
	Listen  string        `koanf:"listen"`
	Timeout time.Duration `koanf:"timeout"`
}

type Fetch struct {
	Timeout time.Duration `koanf:"timeout"`
}

type Export struct {
	Dir string `koanf:"dir"`
}

type Timezone struct {
	// Offset is the fixed "+hh:mm" offset month ranges are resolved in.
	Offset string `koanf:"offset"`
}

type Log struct {
	File string `koanf:"file"`
}

func Defaults() Application {
	return Application{
		Auth: Auth{
			Listen:  "127.0.0.1:0",
			Timeout: 5 * time.Minute,
		},
		Fetch: Fetch{
			Timeout: time.Minute,
		},
		Export: Export{
			Dir: ".",
		},
		Timezone: Timezone{
			Offset: "-05:00",
		},
		Log: Log{
			File: "calinvoice.log",
		},
	}
}

// Load layers defaults, the YAML file at path (optional) and CALINVOICE_* environment
// variables, in that order. A .env file in the working directory is read into the
// environment first when present.
func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("unable to load .env file: %v", err)
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Debugf("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// Validate rejects configurations the OAuth flow cannot work with.
func (a Application) Validate() error {
	if strings.TrimSpace(a.Google.ClientId) == "" {
		return ErrMissingClientId
	}
	if a.Auth.Timeout <= 0 {
		return errors.New("auth.timeout must be positive")
	}
	if a.Fetch.Timeout <= 0 {
		return errors.New("fetch.timeout must be positive")
	}
	return nil
}
