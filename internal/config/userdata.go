package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// maxRecent bounds the recent configuration list
const maxRecent = 8

// UserData holds user-specific settings that are stored locally
type UserData struct {
	LastConfig string    `json:"last_config"`
	Recent     []string  `json:"recent"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LoadUserData loads user data from the user.data file in the config directory
func LoadUserData() (*UserData, error) {
	userDataPath, err := getUserDataPath()
	if err != nil {
		return createDefaultUserData(), nil
	}

	if _, err := os.Stat(userDataPath); os.IsNotExist(err) {
		return createDefaultUserData(), nil
	}

	data, err := os.ReadFile(userDataPath)
	if err != nil {
		return createDefaultUserData(), nil
	}

	var userData UserData
	if err := json.Unmarshal(data, &userData); err != nil {
		// Invalid JSON, return default
		return createDefaultUserData(), nil
	}

	return &userData, nil
}

// SaveUserData saves user data to the user.data file in the config directory
func (ud *UserData) SaveUserData() error {
	userDataPath, err := getUserDataPath()
	if err != nil {
		return err
	}

	ud.UpdatedAt = time.Now()
	if ud.CreatedAt.IsZero() {
		ud.CreatedAt = ud.UpdatedAt
	}

	data, err := json.MarshalIndent(ud, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(userDataPath, data, 0644)
}

// Remember records path as the last used configuration and moves it to the
// front of the recent list, then saves to file
func (ud *UserData) Remember(path string) error {
	if path == "" {
		return nil
	}
	ud.LastConfig = path
	ud.Recent = slices.DeleteFunc(ud.Recent, func(p string) bool { return p == path })
	ud.Recent = append([]string{path}, ud.Recent...)
	if len(ud.Recent) > maxRecent {
		ud.Recent = ud.Recent[:maxRecent]
	}
	return ud.SaveUserData()
}

// createDefaultUserData creates a new UserData with default values
func createDefaultUserData() *UserData {
	now := time.Now()
	return &UserData{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// getUserDataPath returns the path to the user.data file next to the
// default config file
func getUserDataPath() (string, error) {
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(GetDefaultConfigPath()), "user.data"), nil
}
