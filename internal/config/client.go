package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Client holds the OAuth integration credentials from client.yml.
type Client struct {
	ID     string `yaml:"client_id"`
	Secret string `yaml:"client_secret"`
	// Port is the loopback port the OAuth redirect listener binds to. It
	// must match the redirect URI registered with the integration.
	Port int `yaml:"port"`
}

const defaultRedirectPort = 8080

// LoadClient reads client.yml from dir. os.IsNotExist on the returned
// error means the credentials were never saved and must be prompted for.
func LoadClient(dir string) (*Client, error) {
	path := filepath.Join(dir, "client.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	client := &Client{Port: defaultRedirectPort}
	if err := yaml.Unmarshal(data, client); err != nil {
		return nil, errors.Wrapf(err, "parse credentials %s", path)
	}
	if client.ID == "" || client.Secret == "" {
		return nil, errors.Errorf("credentials %s are incomplete", path)
	}
	if client.Port <= 0 {
		client.Port = defaultRedirectPort
	}
	return client, nil
}

// SaveClient writes client.yml into dir, creating the directory if
// needed. The file carries a secret so it is not group or world readable.
func SaveClient(dir string, client *Client) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "create config directory %s", dir)
	}
	if client.Port <= 0 {
		client.Port = defaultRedirectPort
	}
	data, err := yaml.Marshal(client)
	if err != nil {
		return errors.Wrap(err, "encode credentials")
	}
	path := filepath.Join(dir, "client.yml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "write credentials %s", path)
	}
	return nil
}
