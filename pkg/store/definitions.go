package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmaojo/apicentric-sub001/pkg/service"
)

// DefinitionStore persists service definitions by name.
type DefinitionStore interface {
	Save(def *service.ServiceDefinition) error
	Load(name string) (*service.ServiceDefinition, error)
	List() ([]string, error)
	Delete(name string) error
}

// Dir is a DefinitionStore backed by one YAML file per definition under a
// directory.
type Dir struct {
	root string
}

// NewDir creates the directory if needed and returns a store over it.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create definition dir: %w", err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) path(name string) string {
	return filepath.Join(d.root, name+".yaml")
}

func (d *Dir) Save(def *service.ServiceDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("definition has no name")
	}
	return service.Save(def, d.path(def.Name))
}

func (d *Dir) Load(name string) (*service.ServiceDefinition, error) {
	def, err := service.Load(d.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return def, nil
}

func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) Delete(name string) error {
	err := os.Remove(d.path(name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}
