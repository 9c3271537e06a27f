package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
)

// RunExtension looks for an external sav-<subcommand> binary in PATH and runs
// it with args. The global flags are passed as environment variables.
//
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) otherwise.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "sav-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		log.Printf("extension-not-found name=%q err=%q", name, err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv returns the global flags as environment variables.
func extensionEnv() []string {
	return []string{
		EnvDataPath + "=" + *dataPath,
		EnvCurrency + "=" + *defaultCurrency,
		EnvVerbose + "=" + strconv.FormatBool(*Verbose),
		EnvQuotes + "=" + *quotesProvider,
	}
}
