package configuration

import (
	"os"

	"propgen/infrastructure/logger"

	"github.com/joho/godotenv"
)

// LoadEnvFromFile exports KEY=VALUE pairs from dotenv files into the process
// environment and returns how many were set. Variables already present in the
// environment win, and missing files are skipped.
func LoadEnvFromFile(paths ...string) int {
	set := 0
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		vars, err := godotenv.Read(p)
		if err != nil {
			logger.GetLogger().WithField("file", p).WithField("error", err).Warn("Skipping unreadable env file")
			continue
		}
		for key, val := range vars {
			if _, exists := os.LookupEnv(key); exists {
				continue
			}
			if err := os.Setenv(key, val); err == nil {
				set++
			}
		}
		logger.GetLogger().WithField("file", p).Info("Loaded env file")
	}
	return set
}
