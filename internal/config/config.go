package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"go-typer/internal/typer"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

const (
	configFileName = "config.toml"
	dataDirName    = "scripts"
	logFileName    = "typer.log"

	defaultSpeed        = typer.DefaultSpeed
	defaultControl      = "keypress"
	defaultScrollTarget = "surface"
	defaultScript       = "mainframe"
	defaultTextColor    = "#33ff33"
	defaultCursorColor  = "#33ff33"
	defaultGrantedColor = "#008000"
	defaultDeniedColor  = "#ff0000"
	defaultHistoryDb    = "history.db"
)

type Config struct {
	Debug        bool   `toml:"debug"`
	Speed        int    `toml:"speed"`
	Control      string `toml:"control"`
	ScrollTarget string `toml:"scrollTarget"`
	AllowedKeys  []int  `toml:"allowedKeys"`
	Script       string `toml:"script"`
	TextColor    string `toml:"textColor"`
	CursorColor  string `toml:"cursorColor"`
	GrantedColor string `toml:"grantedColor"`
	DeniedColor  string `toml:"deniedColor"`
	HistoryDb    string `toml:"historyDb"`

	dir string
}

func DefaultDir() string {
	home, err := os.UserHomeDir()

	if err != nil {
		return ".go-typer"
	}

	return filepath.Join(home, ".go-typer")
}

func DefaultConfig(dir string) *Config {
	return &Config{
		Speed:        defaultSpeed,
		Control:      defaultControl,
		ScrollTarget: defaultScrollTarget,
		AllowedKeys:  []int{int(typer.KeyCodeF11)},
		Script:       defaultScript,
		TextColor:    defaultTextColor,
		CursorColor:  defaultCursorColor,
		GrantedColor: defaultGrantedColor,
		DeniedColor:  defaultDeniedColor,
		HistoryDb:    defaultHistoryDb,
		dir:          dir,
	}
}

func (c *Config) Dir() string {
	return c.dir
}

func (c *Config) DataDir() string {
	return filepath.Join(c.dir, dataDirName)
}

func (c *Config) LogPath() string {
	return filepath.Join(c.dir, logFileName)
}

func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.HistoryDb) {
		return c.HistoryDb
	}
	return filepath.Join(c.dir, c.HistoryDb)
}

func unmarshalConfig(r io.Reader, config any) error {
	decoder := toml.NewDecoder(r)

	if _, err := decoder.Decode(config); err != nil {
		return err
	}

	return nil
}

func (c *Config) write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c *Config) Save() error {
	file, err := os.Create(filepath.Join(c.dir, configFileName))

	if err != nil {
		return err
	}

	defer file.Close()

	return c.write(file)
}

// ReadOrCreate loads dir/config.toml, writing a default one first if the
// directory or file does not exist yet.
func ReadOrCreate(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, configFileName)

	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig(dir)

			if err := config.Save(); err != nil {
				return nil, err
			}

			return config, nil
		}
		return nil, err
	}

	return ReadFile(path)
}

func ReadFile(path string) (*Config, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	config := Config{}

	if err := unmarshalConfig(file, &config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	config.dir = filepath.Dir(path)
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Speed <= 0 {
		c.Speed = defaultSpeed
	}

	if c.Control == "" {
		c.Control = defaultControl
	}

	if c.ScrollTarget == "" {
		c.ScrollTarget = defaultScrollTarget
	}

	if c.AllowedKeys == nil {
		c.AllowedKeys = []int{int(typer.KeyCodeF11)}
	}

	if c.Script == "" {
		c.Script = defaultScript
	}

	if c.TextColor == "" {
		c.TextColor = defaultTextColor
	}

	if c.CursorColor == "" {
		c.CursorColor = defaultCursorColor
	}

	if c.GrantedColor == "" {
		c.GrantedColor = defaultGrantedColor
	}

	if c.DeniedColor == "" {
		c.DeniedColor = defaultDeniedColor
	}

	if c.HistoryDb == "" {
		c.HistoryDb = defaultHistoryDb
	}
}

// Session converts the file settings into a session config. Text, File and
// Complete are left for the caller.
func (c *Config) Session() (typer.Config, error) {
	control, err := typer.ParseDriveMode(c.Control)

	if err != nil {
		return typer.Config{}, fmt.Errorf("%w: control: %w", ErrInvalidConfig, err)
	}

	scroll, err := typer.ParseScrollTarget(c.ScrollTarget)

	if err != nil {
		return typer.Config{}, fmt.Errorf("%w: scrollTarget: %w", ErrInvalidConfig, err)
	}

	keys := make([]typer.KeyCode, 0, len(c.AllowedKeys))

	for _, k := range c.AllowedKeys {
		keys = append(keys, typer.KeyCode(k))
	}

	return typer.Config{
		Speed:        c.Speed,
		Control:      control,
		ScrollTarget: scroll,
		AllowedKeys:  keys,
	}, nil
}
