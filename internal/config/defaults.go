package config

// applyDefaults fills zero values that have a sensible default.  Durations
// and pool sizes stay zero here; their owners pick the defaults.
func applyDefaults(c *Config) {
	setDefault(&c.HTTP.ListenAddr, ":8080")
	setDefault(&c.Widgets.ViewsDir, "web")
	setDefault(&c.Widgets.Theme, "default")
	setDefault(&c.Widgets.TemplateCacheSize, 1024)
	setDefault(&c.Request.UACacheSize, 4096)
	setDefault(&c.Log.Level, "info")
}

func setDefault[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}
