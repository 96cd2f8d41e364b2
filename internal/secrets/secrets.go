// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of
// plain-text files and from the environment. Each file in the directory is
// one secret: the filename is the key and the trimmed contents the value.
// Environment variables and a .env file fill keys the directory lacks; the
// variable name is the key upper-cased with dashes replaced by underscores
// (deepseek-api-key → DEEPSEEK_API_KEY).
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Known secret keys.
const (
	DeepSeekAPIKey = "deepseek-api-key"
	SMTPUsername   = "smtp-username"
	SMTPPassword   = "smtp-password"
	SMTPRecipient  = "smtp-recipient"
	SMTPServer     = "smtp-server"
)

// Known lists the keys looked up in the environment.
var Known = []string{DeepSeekAPIKey, SMTPUsername, SMTPPassword, SMTPRecipient, SMTPServer}

// Set maps secret keys to values.
type Set map[string]string

// Get returns the value for key, or "" when absent.
func (s Set) Get(key string) string {
	return s[key]
}

// Keys returns the names of the loaded secrets.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// EnvName returns the environment variable name for key.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Load reads all files in dir and returns a Set of filename to trimmed
// contents. A missing directory is not an error. Unreadable files are logged
// and skipped.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Set)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "err", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// LoadAll loads dir with Load, then fills each Known key that is still
// missing from the process environment and finally from envFile. A missing
// envFile is not an error.
func LoadAll(dir, envFile string) (Set, error) {
	s, err := Load(dir)
	if err != nil {
		return nil, err
	}

	dotenv := map[string]string{}
	if envFile != "" {
		dotenv, err = godotenv.Read(envFile)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	for _, key := range Known {
		if s[key] != "" {
			continue
		}
		name := EnvName(key)
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			s[key] = v
			continue
		}
		if v := strings.TrimSpace(dotenv[name]); v != "" {
			s[key] = v
		}
	}
	return s, nil
}
