package config

// Config is the root configuration for todolist.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Log    LogConfig    `json:"log" yaml:"log"`
	UI     UIConfig     `json:"ui" yaml:"ui"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// StoreConfig locates the task file.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"` // default: $TODOLIST_PATH/todo_data.json
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// UIConfig tunes the rendered page.
type UIConfig struct {
	Title string `json:"title" yaml:"title"`

	// ReportMissingTasks shows an error banner when toggle or delete target
	// an unknown task id instead of ignoring the request.
	ReportMissingTasks bool `json:"report_missing_tasks" yaml:"report_missing_tasks"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
