package design

import "os"

// getExecutable resolves the path to a spawned executable, preferring an
// environment variable pointing at its install root over a bare name on PATH.
func getExecutable(exeHomeEnvVar, binSubDir, exeName string) string {
	exeHome := os.Getenv(exeHomeEnvVar)
	if exeHome == "" {
		return exeName
	}
	if binSubDir == "" {
		return exeHome + "/" + exeName
	}
	return exeHome + "/" + binSubDir + "/" + exeName
}
