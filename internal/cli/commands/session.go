package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/conduit-lang/restmap/internal/cache"
	"github.com/conduit-lang/restmap/internal/config"
	"github.com/conduit-lang/restmap/internal/resource"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath  string
	cacheDriver string
	cacheDSN    string
	verbose     bool
	noColor     bool
}

// session holds everything a command needs once configuration is loaded
type session struct {
	cfg      *config.Config
	registry *resource.Registry
	cache    cache.Cache
	logger   *zap.Logger
	closers  []io.Closer
}

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

type unknownResourceError struct {
	name    string
	defined []string
}

func (e *unknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource %q", e.name)
}

type noURLError struct {
	resource string
	role     string
	vars     []string
}

func (e *noURLError) Error() string {
	return fmt.Sprintf("no url resolvable for %s (%s)", e.resource, e.role)
}

func (o *rootOptions) open(ctx context.Context) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, &configError{err: err}
	}

	logger := zap.NewNop()
	if o.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	cacheCfg := cfg.Cache
	if o.cacheDriver != "" {
		cacheCfg.Driver = o.cacheDriver
	}
	if o.cacheDSN != "" {
		cacheCfg.DSN = o.cacheDSN
	}

	backend, closer, err := openCache(ctx, cacheCfg)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, cache: backend, logger: logger}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}

	s.registry, err = config.Build(cfg, config.BuildOptions{Cache: backend, Logger: logger})
	if err != nil {
		s.Close()
		return nil, &configError{err: err}
	}
	return s, nil
}

func (s *session) resource(name string) (*resource.Metadata, error) {
	meta, ok := s.registry.Get(name)
	if !ok {
		return nil, &unknownResourceError{name: name, defined: s.registry.List()}
	}
	return meta, nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()

	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
