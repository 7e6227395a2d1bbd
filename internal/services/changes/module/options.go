package module

import "djnic/internal/platform/config"

// Options for the changes module
type Options struct {
	DefaultTZ string
	ZoneTZ    map[string]string
}

// FromConfig fills options from environment
// CORE_CHANGES_DEFAULT_TZ (default UTC) is the location of new zones
// CORE_CHANGES_AR_TZ (default America/Argentina/Cordoba) is the location of zones under "ar"
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_CHANGES_")
	return Options{
		DefaultTZ: n.MayString("DEFAULT_TZ", "UTC"),
		ZoneTZ:    map[string]string{"ar": n.MayString("AR_TZ", "America/Argentina/Cordoba")},
	}
}
