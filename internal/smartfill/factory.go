package smartfill

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"smartinvoice/internal/config"
	"smartinvoice/internal/port"
)

// ProviderFactory creates a SmartFiller from a provider config.
type ProviderFactory func(cfg *config.SmartFillProviderConfig) (port.SmartFiller, error)

// registry of provider factories, populated by init() in each provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewFiller creates a SmartFiller from a provider config using the registered factory.
func NewFiller(cfg *config.SmartFillProviderConfig) (port.SmartFiller, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown smart fill provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Build assembles the configured provider chain. A single provider is
// returned as is; two or more are wrapped in a FallbackFiller.
func Build(cfg *config.SmartFillConfig, log logrus.FieldLogger) (port.SmartFiller, error) {
	slots := []*config.SmartFillProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()}

	var (
		fillers []port.SmartFiller
		names   []string
	)
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		f, err := NewFiller(slot)
		if err != nil {
			return nil, err
		}
		fillers = append(fillers, f)
		names = append(names, slot.Provider)
	}

	if len(fillers) == 1 {
		return fillers[0], nil
	}
	return NewFallbackFiller(fillers, names, log), nil
}

// CleanAPIKey strips whitespace and stray quote characters that creep in when
// keys are pasted into environment files.
func CleanAPIKey(key string) string {
	return strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(key))
}
