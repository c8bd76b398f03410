package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/neruai/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	documentFileMode = 0o600
	documentDirMode  = 0o700
	dataDirName      = ".neruai"
)

type schema[S any] interface {
	*S
	applyDefaults()
	validateVersion() error
}

// document is the on-disk side of a store: one TOML file, read once and
// rewritten whole on every mutation.
type document struct {
	path   string
	name   string
	logger zerolog.Logger
}

func newDocument(cfg *viper.Viper, key string, fileName string, name string, logger zerolog.Logger) (document, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(key)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return document{}, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, dataDirName, fileName)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return document{}, fmt.Errorf("resolve %s path: %w", name, err)
	}

	return document{
		path:   filepath.Clean(absPath),
		name:   name,
		logger: logger.With().Str("store", name).Str("path", absPath).Logger(),
	}, nil
}

func (d document) Path() string {
	return d.path
}

// loadDocument never fails: a missing file is created empty, an unreadable
// or corrupt one is logged and treated as empty.
func loadDocument[S any, P schema[S]](d document) S {
	var file S
	P(&file).applyDefaults()

	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := d.write(P(&file)); err != nil {
				d.logger.Warn().Err(err).Msg("create empty store file")
			}
			return file
		}
		d.logger.Warn().Err(err).Msg("read store file, starting empty")
		return file
	}

	var decoded S
	if err := toml.Unmarshal(data, &decoded); err != nil {
		d.logger.Warn().Err(err).Msgf("decode %s file, starting empty", d.name)
		return file
	}
	if err := P(&decoded).validateVersion(); err != nil {
		d.logger.Warn().Err(err).Msg("unsupported store file, starting empty")
		return file
	}
	P(&decoded).applyDefaults()

	return decoded
}

func (d document) persist(file any) error {
	if err := d.write(file); err != nil {
		d.logger.Error().Err(err).Msg("persist store")
		return fmt.Errorf("%w: %w", domain.ErrNotPersisted, err)
	}
	return nil
}

func (d document) write(file any) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, documentDirMode); err != nil {
		return fmt.Errorf("create %s directory: %w", d.name, err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode %s file: %w", d.name, err)
	}

	tempFile, err := os.CreateTemp(dir, "."+d.name+"-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp %s file: %w", d.name, err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp %s file: %w", d.name, err)
	}

	if err := tempFile.Chmod(documentFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp %s file: %w", d.name, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp %s file: %w", d.name, err)
	}

	if err := os.Rename(tempName, d.path); err != nil {
		return fmt.Errorf("replace %s file: %w", d.name, err)
	}

	cleanup = false
	return nil
}
