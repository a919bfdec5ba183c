package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix namespaces docvector's own environment overrides.
	envPrefix = "DOCVECTOR_"

	maxConfigFileSize = 1024 * 1024
)

// DefaultPath returns the default config file location,
// ~/.config/docvector/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "docvector", "config.yaml"), nil
}

// Load reads configuration with the usual precedence:
//
//  1. DOCVECTOR_* environment variables (DOCVECTOR_SPLITTER_CHUNK_SIZE
//     -> splitter.chunk_size)
//  2. the YAML config file (configPath, or DefaultPath when empty)
//  3. defaults, including the legacy OPENAI_API_KEY / EMBEDDING_MODEL /
//     DB_* fallbacks
//
// A missing config file is not an error; the defaults stand in.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		var err error
		configPath, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if info, err := os.Stat(configPath); err == nil {
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envToKey maps DOCVECTOR_SECTION_FIELD_NAME to section.field_name:
// the first underscore separates the section, the rest belongs to the
// field. The store providers nest one level deeper and are mapped
// explicitly.
func envToKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))

	for _, nested := range []string{"store_pgvector_", "store_chromem_"} {
		if strings.HasPrefix(s, nested) {
			section := strings.ReplaceAll(strings.TrimSuffix(nested, "_"), "_", ".")
			return section + "." + strings.TrimPrefix(s, nested)
		}
	}

	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 1 {
		return s
	}
	return parts[0] + "." + parts[1]
}

// defaultTemplate is written by `docvector init`.
const defaultTemplate = `# docvector configuration
#
# Default location: ~/.config/docvector/config.yaml
# Every key can be overridden with a DOCVECTOR_SECTION_FIELD environment
# variable, e.g. DOCVECTOR_SPLITTER_CHUNK_SIZE=500.

source:
  root: .
  include:
    - "**/*.md"
    - "**/*.mdx"
  max_file_size: 1048576

splitter:
  mode: token          # token | character
  chunk_size: 1000
  chunk_overlap: 200
  encoding: cl100k_base

embeddings:
  base_url: https://api.openai.com/v1
  model: text-embedding-3-small
  # api_key falls back to OPENAI_API_KEY
  batch_size: 100
  requests_per_second: 0

store:
  provider: pgvector   # pgvector | chromem
  collection: documentations
  pgvector:
    # url falls back to the DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD
    # environment variables
    url: ""
    ensure_index: true
  chromem:
    path: ~/.config/docvector/vectorstore

secrets:
  enabled: false
  redaction: "[REDACTED]"

logging:
  level: info
  format: console

# Static metadata attached to every record, e.g.
# metadata:
#   framework: Next.js
`

// WriteDefaultTemplate creates a starter config file if none exists.
// Returns true when a file was created.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0o600); err != nil {
		return false, fmt.Errorf("writing config template: %w", err)
	}
	return true, nil
}
