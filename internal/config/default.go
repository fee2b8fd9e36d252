package config

// Default returns the configuration used for everything a config file leaves
// out.
func Default() Config {
	return Config{
		Listen:   "localhost:8080",
		Prefix:   "",
		LogLevel: "info",
		Timeout:  "10s",
		Post:     Post{Codec: "form"},
	}
}
