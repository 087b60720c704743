package cloudpay

import (
	"context"
	"sort"
	"sync"
)

// ConfigName identifies a Config within a Repo.
type ConfigName string

// DefaultConfigName is the default name used when a context carries none.
const DefaultConfigName ConfigName = "default"

// Repo stores named configurations. Unknown names are materialized with
// default values on first reference, so a lookup by name never fails.
//
// The "current default" name is carried by a context.Context rather than by
// the Repo, which keeps scoped overrides local to the call chain that set
// them.
type Repo struct {
	mu      sync.RWMutex
	configs map[ConfigName]*Config
}

// NewRepo creates an empty repository.
func NewRepo() *Repo {
	return &Repo{configs: make(map[ConfigName]*Config)}
}

// DefaultRepo backs the package-level configuration helpers.
var DefaultRepo = NewRepo()

type defaultNameKey struct {
	repo *Repo
}

// Config returns the config stored under name, creating a default one when
// the name is unknown.
func (r *Repo) Config(name ConfigName) *Config {
	r.mu.RLock()
	cfg, ok := r.configs[name]
	r.mu.RUnlock()
	if ok {
		return cfg
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg, ok := r.configs[name]; ok {
		return cfg
	}
	cfg = NewConfig()
	r.configs[name] = cfg
	return cfg
}

// Configure applies fn to a copy of the named config and stores the copy.
// Pointers returned by earlier lookups keep seeing the old values; clients
// and webhooks built from a name look it up on every use instead. fn runs
// without the repo lock held, so it may read other configs. Concurrent
// Configure calls on one name are last-writer-wins.
func (r *Repo) Configure(name ConfigName, fn func(*Config)) {
	next := r.Config(name).Clone()
	fn(next)

	r.mu.Lock()
	r.configs[name] = next
	r.mu.Unlock()
}

// Names returns the names of all stored configs in sorted order.
func (r *Repo) Names() []ConfigName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]ConfigName, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Resolve turns a configuration reference into a Config:
//   - nil: the config named by DefaultName(ctx)
//   - ConfigName or string: the named config
//   - Overrides, *Overrides or map[string]any: a merged copy of the
//     current default config
//   - *Config: returned as is
//
// Anything else yields a *ConfigResolutionError.
func (r *Repo) Resolve(ctx context.Context, ref any) (*Config, error) {
	switch v := ref.(type) {
	case nil:
		return r.Config(r.DefaultName(ctx)), nil
	case ConfigName:
		return r.Config(v), nil
	case string:
		return r.Config(ConfigName(v)), nil
	case *Config:
		if v == nil {
			return r.Config(r.DefaultName(ctx)), nil
		}
		return v, nil
	case Overrides:
		return r.Config(r.DefaultName(ctx)).Merge(v), nil
	case *Overrides:
		if v == nil {
			return r.Config(r.DefaultName(ctx)), nil
		}
		return r.Config(r.DefaultName(ctx)).Merge(*v), nil
	case map[string]any:
		o, err := OverridesFromMap(v)
		if err != nil {
			return nil, &ConfigResolutionError{Value: ref, Cause: err}
		}
		return r.Config(r.DefaultName(ctx)).Merge(o), nil
	default:
		return nil, &ConfigResolutionError{Value: ref}
	}
}

// nameOf reports the config name ref refers to, for references that are
// looked up again on every use.
func nameOf(ref any) (ConfigName, bool) {
	switch v := ref.(type) {
	case ConfigName:
		return v, true
	case string:
		return ConfigName(v), true
	default:
		return "", false
	}
}

// DefaultName returns the current default config name carried by ctx, or
// DefaultConfigName.
func (r *Repo) DefaultName(ctx context.Context) ConfigName {
	if ctx == nil {
		return DefaultConfigName
	}
	if name, ok := ctx.Value(defaultNameKey{r}).(ConfigName); ok {
		return name
	}
	return DefaultConfigName
}

// WithDefault returns a context in which name is this repo's current default.
func (r *Repo) WithDefault(ctx context.Context, name ConfigName) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, defaultNameKey{r}, name)
}

// WithScopedDefault runs fn with name as the current default. The override is
// visible only through the context passed to fn; callers holding ctx keep
// their own default whatever fn does, including panicking.
func (r *Repo) WithScopedDefault(ctx context.Context, name ConfigName, fn func(ctx context.Context) error) error {
	return fn(r.WithDefault(ctx, name))
}

// Configure configures name on DefaultRepo.
func Configure(name ConfigName, fn func(*Config)) {
	DefaultRepo.Configure(name, fn)
}

// Resolve resolves ref on DefaultRepo.
func Resolve(ctx context.Context, ref any) (*Config, error) {
	return DefaultRepo.Resolve(ctx, ref)
}

// WithDefault sets DefaultRepo's current default name on ctx.
func WithDefault(ctx context.Context, name ConfigName) context.Context {
	return DefaultRepo.WithDefault(ctx, name)
}

// WithScopedDefault runs fn with name as DefaultRepo's current default.
func WithScopedDefault(ctx context.Context, name ConfigName, fn func(ctx context.Context) error) error {
	return DefaultRepo.WithScopedDefault(ctx, name, fn)
}

// DefaultName returns DefaultRepo's current default name for ctx.
func DefaultName(ctx context.Context) ConfigName {
	return DefaultRepo.DefaultName(ctx)
}
