// Package compose reads the project's docker compose manifest. The tool only
// needs to know which services are declared; everything else about container
// behavior stays with docker compose itself.
package compose

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Service holds the subset of a compose service definition we care about.
type Service struct {
	Image       string   `yaml:"image"`
	Ports       []string `yaml:"ports,omitempty"`
	Environment []string `yaml:"environment,omitempty"`
	DependsOn   []string `yaml:"depends_on,omitempty"`
	Restart     string   `yaml:"restart,omitempty"`
}

// Manifest is a parsed docker-compose.yml
type Manifest struct {
	Services map[string]Service `yaml:"services"`
}

// Load parses the manifest at the given path
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "Could not open file %s", path)
	}

	var manifest Manifest
	err = yaml.Unmarshal(data, &manifest)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s", path)
	}

	return &manifest, nil
}

// FindManifest searches the given directory and its parents for the next
// docker-compose.yml and returns its path.
func FindManifest(dir string) (string, error) {
	path := dir
	for {
		manifestPath := filepath.Join(path, "docker-compose.yml")
		_, err := os.Stat(manifestPath)
		if err == nil {
			return manifestPath, nil
		}
		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "Failed to check %s", manifestPath)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", eris.New("No docker-compose.yml found")
		}

		path = parent
	}
}

// VerifyServices checks that the manifest at the given path declares every
// named service.
func VerifyServices(path string, names []string) error {
	manifest, err := Load(path)
	if err != nil {
		return err
	}

	missing := make([]string, 0)
	for _, name := range names {
		if _, ok := manifest.Services[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return eris.Errorf("missing services: %s", strings.Join(missing, ", "))
	}
	return nil
}
