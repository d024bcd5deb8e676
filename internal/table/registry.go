package table

import (
	"fmt"

	"github.com/markusressel/act2go/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/exp/slices"
)

// Registry holds all configured calibration tables by id
type Registry struct {
	curves cmap.ConcurrentMap[string, *Curve]
	maps   cmap.ConcurrentMap[string, *Map]
}

func NewRegistry() *Registry {
	return &Registry{
		curves: cmap.New[*Curve](),
		maps:   cmap.New[*Map](),
	}
}

// NewRegistryFromConfig builds all tables of the given configuration
func NewRegistryFromConfig(configs []configuration.TableConfig) (*Registry, error) {
	registry := NewRegistry()
	for _, config := range configs {
		if err := registry.Add(config); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (r *Registry) Add(config configuration.TableConfig) error {
	switch {
	case config.Curve != nil:
		curve, err := NewCurve(config.ID, *config.Curve)
		if err != nil {
			return err
		}
		r.curves.Set(config.ID, curve)
	case config.Map != nil:
		m, err := NewMap(config.ID, *config.Map)
		if err != nil {
			return err
		}
		r.maps.Set(config.ID, m)
	default:
		return fmt.Errorf("table %s: neither curve nor map configured", config.ID)
	}
	return nil
}

func (r *Registry) Curve(id string) (*Curve, error) {
	curve, ok := r.curves.Get(id)
	if !ok {
		return nil, fmt.Errorf("no curve table with id '%s'", id)
	}
	return curve, nil
}

func (r *Registry) Map(id string) (*Map, error) {
	m, ok := r.maps.Get(id)
	if !ok {
		return nil, fmt.Errorf("no map table with id '%s'", id)
	}
	return m, nil
}

// Ids returns the ids of all curves and maps
func (r *Registry) Ids() []string {
	ids := append(r.curves.Keys(), r.maps.Keys()...)
	slices.Sort(ids)
	return ids
}
