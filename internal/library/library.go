package library

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var (
	ErrScriptNotFound = errors.New("script not found")
	ErrInvalidScript  = errors.New("invalid script")
)

const scriptExt = ".yaml"

type Banner string

const (
	BannerNone    Banner = ""
	BannerGranted Banner = "granted"
	BannerDenied  Banner = "denied"
)

type Script struct {
	Name   string `yaml:"name"`
	Banner Banner `yaml:"banner,omitempty"`
	Text   string `yaml:"text"`
}

type Library struct {
	scripts map[string]*Script
}

func New() *Library {
	return &Library{scripts: make(map[string]*Script)}
}

func readScript(r io.Reader, v any) error {
	return yaml.NewDecoder(r).Decode(v)
}

func ReadScriptFile(path string) (*Script, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	script := &Script{}

	if err := readScript(file, script); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidScript, path, err)
	}

	return script, nil
}

// Load reads every script file in dirPath concurrently.
func Load(dirPath string) (*Library, error) {
	dirEntries, err := os.ReadDir(dirPath)

	if err != nil {
		return nil, err
	}

	var g errgroup.Group

	output := make(chan *Script)
	errCh := make(chan error, 1)

	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != scriptExt {
			continue
		}

		g.Go(func() error {
			script, err := ReadScriptFile(filepath.Join(dirPath, entry.Name()))

			if err != nil {
				return err
			}

			output <- script

			return nil
		})
	}

	go func() {
		errCh <- g.Wait()
		close(output)
	}()

	lib := New()

	for script := range output {
		lib.Set(script)
	}

	if err := <-errCh; err != nil {
		return nil, err
	}

	return lib, nil
}

func (l *Library) Get(name string) (*Script, error) {
	s, ok := l.scripts[name]

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, name)
	}

	return s, nil
}

func (l *Library) Set(s *Script) {
	l.scripts[s.Name] = s
}

func (l *Library) Contains(name string) bool {
	_, ok := l.scripts[name]
	return ok
}

func (l *Library) Names() []string {
	names := make([]string, 0, len(l.scripts))

	for name := range l.scripts {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func (l *Library) Len() int {
	return len(l.scripts)
}

func (s *Script) Verify() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: script does not have a name", ErrInvalidScript)
	}

	// the name becomes a file name inside the data dir
	if filepath.Base(s.Name) != s.Name || s.Name == "." || s.Name == ".." || strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("%w: script name %q is not a plain file name", ErrInvalidScript, s.Name)
	}

	if s.Text == "" {
		return fmt.Errorf("%w: script %s has no text", ErrInvalidScript, s.Name)
	}

	switch s.Banner {
	case BannerNone, BannerGranted, BannerDenied:
	default:
		return fmt.Errorf("%w: script %s has unknown banner %q", ErrInvalidScript, s.Name, s.Banner)
	}

	return nil
}

func (s *Script) Save(dir string) error {
	path := filepath.Join(dir, s.Name+scriptExt)

	file, err := os.Create(path)

	if err != nil {
		return err
	}

	defer file.Close()

	encoder := yaml.NewEncoder(file)
	defer encoder.Close()

	return encoder.Encode(s)
}

//go:embed scripts/*.yaml
var builtinScripts embed.FS

// Install creates dir and copies the built-in scripts into it. An existing
// dir is left untouched.
func Install(dir string) error {
	if _, err := os.Lstat(dir); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	entries, err := builtinScripts.ReadDir("scripts")

	if err != nil {
		return err
	}

	for _, entry := range entries {
		data, err := builtinScripts.ReadFile("scripts/" + entry.Name())

		if err != nil {
			return err
		}

		if err := os.WriteFile(filepath.Join(dir, entry.Name()), data, 0644); err != nil {
			return err
		}
	}

	return nil
}

// ImportFile validates the script at path and saves it into dir.
func ImportFile(dir, path string) error {
	script, err := ReadScriptFile(path)

	if err != nil {
		return err
	}

	if err := script.Verify(); err != nil {
		return err
	}

	return script.Save(dir)
}

func ImportDir(dir, src string) error {
	dirEntries, err := os.ReadDir(src)

	if err != nil {
		return err
	}

	var g errgroup.Group

	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != scriptExt {
			continue
		}

		g.Go(func() error {
			return ImportFile(dir, filepath.Join(src, entry.Name()))
		})
	}

	return g.Wait()
}
