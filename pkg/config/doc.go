// Package config loads configuration structs from environment variables,
// with an optional .env file for local development.
//
// Fields are declared with env tags and parsed once per type; later calls
// for the same type return the cached value:
//
//	type ServerConfig struct {
//		Addr             string `env:"WSGIKIT_ADDR" envDefault:":8080"`
//		UploadsDir       string `env:"WSGIKIT_UPLOADS_DIR" envDefault:"./uploads"`
//		MaxFiles         int64  `env:"WSGIKIT_MAX_FILES"`
//		MaxFileSize      int64  `env:"WSGIKIT_MAX_FILESIZE"`
//		MaxContentLength int64  `env:"WSGIKIT_MAX_CONTENT_LENGTH"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
package config
