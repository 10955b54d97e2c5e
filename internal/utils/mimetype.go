package utils

import (
	"mime"
	"path/filepath"
	"strings"
)

// recordTypes covers extensions the mime table often lacks
var recordTypes = map[string]string{
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".json": "application/json",
	".toml": "application/toml",
	".txt":  "text/plain",
}

// ContentType returns the MIME type stored with a configuration record
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := recordTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	// records are always YAML, whatever the key says
	return "application/yaml"
}
