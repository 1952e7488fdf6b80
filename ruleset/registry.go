package ruleset

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/geocombine/geocombine/mderr"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

//go:embed rules/*.yaml
var builtin embed.FS

// Names of the built-in rule sets
const (
	FGDCToGeoblacklight          = "fgdc2geoBL"
	FGDCToHTML                   = "fgdc2html"
	ISOToGeoblacklight           = "iso2geoBL"
	ISOToHTML                    = "iso2html"
	CSWToGeoblacklight           = "csw2geoBL"
	CSWToHTML                    = "csw2html"
	DCToGeoblacklight            = "dc2geoBL"
	DCToHTML                     = "dc2html"
	GeoblacklightToGeoblacklight = "geoblacklight2geoBL"
	GeoblacklightToHTML          = "geoblacklight2html"
)

// Registry holds rule sets by name. It is fully populated by
// NewRegistry and read-only afterwards, so a single Registry may be
// shared by concurrent transformations.
type Registry struct {
	sets map[string]*RuleSet
}

// RegistryOption configures NewRegistry
type RegistryOption func(*registryConfig)

type registryConfig struct {
	dirs      []string
	noBuiltin bool
}

// WithDir overlays every *.yaml rule set found in dir. Later
// directories override earlier ones and the built-ins.
func WithDir(dir string) RegistryOption {
	return func(c *registryConfig) {
		if dir != "" {
			c.dirs = append(c.dirs, dir)
		}
	}
}

// WithoutBuiltin omits the embedded rule sets
func WithoutBuiltin() RegistryOption { return func(c *registryConfig) { c.noBuiltin = true } }

// NewRegistry loads the built-in rule sets, then any directories
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	cfg := &registryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	r := &Registry{sets: map[string]*RuleSet{}}
	if !cfg.noBuiltin {
		sub, err := fs.Sub(builtin, "rules")
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if err := r.loadFS(sub, "builtin"); err != nil {
			return nil, err
		}
	}
	for _, dir := range cfg.dirs {
		if err := r.loadFS(os.DirFS(dir), dir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var defaultRegistry, defaultRegistryErr = NewRegistry()

// Default returns the registry of built-in rule sets
func Default() (*Registry, error) { return defaultRegistry, defaultRegistryErr }

func (r *Registry) loadFS(fsys fs.FS, origin string) error {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return errors.WithStack(err)
	}
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return errors.WithStack(mderr.InvalidRuleSet(name, mderr.WithCause(err)))
		}
		rs, err := DecodeBytes(b)
		if err != nil {
			return errors.Wrapf(err, "rule set %s/%s", origin, name)
		}
		if stem := strings.TrimSuffix(path.Base(name), ".yaml"); stem != rs.Name {
			return errors.WithStack(mderr.InvalidRuleSet(rs.Name,
				mderr.WithMessage("file "+name+" must be named "+rs.Name+".yaml")))
		}
		if _, ok := r.sets[rs.Name]; ok {
			glog.V(1).Infof("ruleset: %s overrides %s", origin, rs.Name)
		}
		r.sets[rs.Name] = rs
	}
	glog.V(2).Infof("ruleset: loaded %d rule sets from %s", len(names), origin)
	return nil
}

// Get returns the named rule set
func (r *Registry) Get(name string) (*RuleSet, error) {
	if rs, ok := r.sets[name]; ok {
		return rs, nil
	}
	return nil, errors.WithStack(mderr.UnknownRuleSet(name))
}

// Names returns every registered rule set name, sorted
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.sets))
	for name := range r.sets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
