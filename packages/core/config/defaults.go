package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Output:          "console",
		OutputFile:      "",
		NoColor:         boolPtr(false),
		Strict:          boolPtr(false),
		AllowTodoPass:   boolPtr(true),
		Baud:            0,
		TAPVersion:      boolPtr(true),
		YAMLDiagnostics: boolPtr(false),
		WatchDebounce:   300, // milliseconds
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Output == defaults.Output &&
		c.OutputFile == defaults.OutputFile &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.GetStrict() == defaults.GetStrict() &&
		c.GetAllowTodoPass() == defaults.GetAllowTodoPass() &&
		c.Baud == defaults.Baud &&
		c.GetTAPVersion() == defaults.GetTAPVersion() &&
		c.GetYAMLDiagnostics() == defaults.GetYAMLDiagnostics() &&
		c.WatchDebounce == defaults.WatchDebounce
}
