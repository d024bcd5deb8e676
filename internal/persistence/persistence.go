package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/gains"
	"github.com/markusressel/act2go/internal/pid"
	"github.com/markusressel/act2go/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketGains     = "gains"
	BucketInstances = "instances"
)

// Persistence stores tuning changes made at runtime, so they survive a restart.
// Load functions return os.ErrNotExist when nothing was stored for a key.
type Persistence interface {
	Init() error

	LoadGains(controllerId string, lane int) (pid.Gains, error)
	SaveGains(controllerId string, lane int, g pid.Gains) error

	LoadInstanceFlags(controllerId string, index int) (gains.InstanceFlags, error)
	SaveInstanceFlags(controllerId string, index int, flags gains.InstanceFlags) error

	// DeleteController removes every stored override of the given controller
	DeleteController(controllerId string) error
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func controllerPrefix(controllerId string) string {
	return controllerId + "/"
}

func key(controllerId string, number int) []byte {
	return []byte(controllerPrefix(controllerId) + strconv.Itoa(number))
}

func (p persistence) save(bucket string, key []byte, value interface{}) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put(key, data)
	})
}

func (p persistence) load(bucket string, key []byte, value interface{}) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get(key)
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, value)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved data for %s: %v", key, err)
			err := b.Delete(key)
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", key, err)
			}
			return os.ErrNotExist
		}
		return nil
	})
}

// SaveGains saves the gains of a single lane of the given controller
func (p persistence) SaveGains(controllerId string, lane int, g pid.Gains) error {
	return p.save(BucketGains, key(controllerId, lane), g)
}

// LoadGains loads the gains of a single lane of the given controller
func (p persistence) LoadGains(controllerId string, lane int) (pid.Gains, error) {
	var g pid.Gains
	err := p.load(BucketGains, key(controllerId, lane), &g)
	return g, err
}

func (p persistence) SaveInstanceFlags(controllerId string, index int, flags gains.InstanceFlags) error {
	return p.save(BucketInstances, key(controllerId, index), flags)
}

func (p persistence) LoadInstanceFlags(controllerId string, index int) (gains.InstanceFlags, error) {
	var flags gains.InstanceFlags
	err := p.load(BucketInstances, key(controllerId, index), &flags)
	return flags, err
}

func (p persistence) DeleteController(controllerId string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	prefix := []byte(controllerPrefix(controllerId))

	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{BucketGains, BucketInstances} {
			b := tx.Bucket([]byte(bucket))
			if b == nil {
				// nothing stored yet
				continue
			}
			var keys [][]byte
			c := b.Cursor()
			for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
				keys = append(keys, append([]byte{}, k...))
			}
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Overlay replaces the configured tuning of a controller with the stored overrides.
// Lanes missing from defaults are zeroed up to lanesPerBank.
// Stored gains that would not pass validation anymore are ignored.
func Overlay(p Persistence, controllerId string, lanesPerBank int, defaults gains.Defaults) gains.Defaults {
	result := gains.Defaults{
		Lanes:     make([]pid.Gains, max(lanesPerBank, len(defaults.Lanes))),
		Instances: append([]gains.InstanceFlags{}, defaults.Instances...),
	}
	copy(result.Lanes, defaults.Lanes)

	for lane := range result.Lanes {
		g, err := p.LoadGains(controllerId, lane)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				ui.Warning("Unable to load gains of %s lane %d: %v", controllerId, lane, err)
			}
			continue
		}
		if err := configuration.ValidateGains(gains.ToConfig(g)); err != nil {
			ui.Warning("Ignoring stored gains of %s lane %d: %v", controllerId, lane, err)
			continue
		}
		ui.Debug("Restored gains of %s lane %d: %+v", controllerId, lane, g)
		result.Lanes[lane] = g
	}

	for index := range result.Instances {
		flags, err := p.LoadInstanceFlags(controllerId, index)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				ui.Warning("Unable to load settings of %s instance %d: %v", controllerId, index, err)
			}
			continue
		}
		result.Instances[index] = flags
	}

	return result
}

// Track stores every change made to the given registry
func Track(p Persistence, controllerId string, registry *gains.Registry) {
	registry.OnChange(func(change gains.Change) {
		var err error
		switch change.Kind {
		case gains.LaneGainsChanged:
			err = p.SaveGains(controllerId, change.Lane, change.Gains)
		case gains.InstanceFlagsChanged:
			err = p.SaveInstanceFlags(controllerId, change.Index, change.Flags)
		}
		if err != nil {
			ui.Error("Unable to persist tuning change of %s: %v", controllerId, err)
		}
	})
}
