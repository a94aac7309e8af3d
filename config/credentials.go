package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Credentials mirrors credentials.yml.
type Credentials struct {
	Users   []UserCredential `yaml:"users" validate:"dive"`
	APIKeys APIKeys          `yaml:"api_keys"`
}

// UserCredential is one login. Password holds a bcrypt hash.
type UserCredential struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password"`
}

type APIKeys struct {
	SerpAPIKey    string `yaml:"serpapi_key"`
	OpenAIKey     string `yaml:"openai_key"`
	GeminiKey     string `yaml:"gemini_key"`
	SessionSecret string `yaml:"session_secret"`
}

// LoadCredentials reads and parses the credentials file at path.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read credentials: %w", err)
	}
	return ParseCredentials(data)
}

// ParseCredentials decodes a credentials YAML document.
func ParseCredentials(data []byte) (*Credentials, error) {
	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("config: parse credentials: %w", err)
	}
	return &creds, nil
}

// ApplyEnv lets the environment override secrets from the file. USER_PASSWORD
// replaces the first user's password hash. Unset variables leave the file's
// values alone.
func (c *Credentials) ApplyEnv(getenv func(string) string) {
	if v := getenv("USER_PASSWORD"); v != "" && len(c.Users) > 0 {
		c.Users[0].Password = v
	}
	overrides := []struct {
		env string
		dst *string
	}{
		{"SERPAPI_KEY", &c.APIKeys.SerpAPIKey},
		{"OPENAI_KEY", &c.APIKeys.OpenAIKey},
		{"GEMINI_API_KEY", &c.APIKeys.GeminiKey},
		{"SESSION_SECRET", &c.APIKeys.SessionSecret},
	}
	for _, o := range overrides {
		if v := getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

// FindUser returns the user with the given username.
func (c *Credentials) FindUser(username string) (UserCredential, bool) {
	for _, u := range c.Users {
		if u.Username == username {
			return u, true
		}
	}
	return UserCredential{}, false
}
