package catalog

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	approvaldomain "github.com/tracesphere/campusasset/internal/approval/domain"
	assetdomain "github.com/tracesphere/campusasset/internal/asset/domain"
	procurementdomain "github.com/tracesphere/campusasset/internal/procurement/domain"
)

// Config lists the options offered by the console forms. Institutions
// override them with a mounted catalog.yml; edits apply without a
// restart.
type Config struct {
	Categories  []string `json:"categories" mapstructure:"categories"`
	Locations   []string `json:"locations" mapstructure:"locations"`
	Suppliers   []string `json:"suppliers" mapstructure:"suppliers"`
	Units       []string `json:"units" mapstructure:"units"`
	Priorities  []string `json:"priorities" mapstructure:"priorities"`
	Departments []string `json:"departments" mapstructure:"departments"`
}

func DefaultConfig() Config {
	return Config{
		Categories:  assetdomain.Categories,
		Locations:   assetdomain.Locations,
		Suppliers:   procurementdomain.Suppliers,
		Units:       []string{"pcs", "box", "set", "litre", "kg"},
		Priorities:  approvaldomain.Priorities,
		Departments: []string{"Computer Science", "Electronics & Communication", "Mechanical", "Civil", "Chemistry", "IT", "Admin"},
	}
}

type Holder struct {
	current atomic.Value // holds Config
}

func NewHolder() (*Holder, error) {
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/campusasset/config") // Volume-mounted config
	v.AddConfigPath("/etc/campusasset")            // System config
	v.AddConfigPath(".")                           // Current directory (dev mode)

	v.SetEnvPrefix("CAMPUSASSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultConfig()
		v.SetDefault("catalog.categories", defaults.Categories)
		v.SetDefault("catalog.locations", defaults.Locations)
		v.SetDefault("catalog.suppliers", defaults.Suppliers)
		v.SetDefault("catalog.units", defaults.Units)
		v.SetDefault("catalog.priorities", defaults.Priorities)
		v.SetDefault("catalog.departments", defaults.Departments)
	}

	var cfg Config
	if err := v.UnmarshalKey("catalog", &cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	holder := &Holder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Config
		if err := v.UnmarshalKey("catalog", &updated); err != nil {
			log.Printf("[catalog-config] reload failed: %v", err)
			return
		}
		if err := validate(updated); err != nil {
			log.Printf("[catalog-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[catalog-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *Holder) Get() Config {
	return h.current.Load().(Config)
}

func validate(cfg Config) error {
	if len(cfg.Categories) == 0 {
		return errors.New("catalog.categories cannot be empty")
	}
	if len(cfg.Locations) == 0 {
		return errors.New("catalog.locations cannot be empty")
	}
	if len(cfg.Suppliers) == 0 {
		return errors.New("catalog.suppliers cannot be empty")
	}
	return nil
}
