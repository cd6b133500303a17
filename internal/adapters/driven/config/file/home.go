package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvHome overrides the application home directory.
const EnvHome = "SKILLBOT_HOME"

// homeDirName is the directory created under the user's home.
const homeDirName = ".skillbot"

// HomeDir returns the application home: $SKILLBOT_HOME when set,
// otherwise ~/.skillbot.
func HomeDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, homeDirName), nil
}
