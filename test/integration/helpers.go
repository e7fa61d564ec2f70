//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	URL        string
	User       string
	Password   string
	ListPath   string
	BinaryPath string
	RedisAddr  string
	NATSURL    string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	listPath := os.Getenv("PAGEDREST_TEST_LIST_PATH")
	if listPath == "" {
		listPath = "/items"
	}

	return &TestConfig{
		URL:        os.Getenv("PAGEDREST_TEST_URL"),
		User:       os.Getenv("PAGEDREST_TEST_USER"),
		Password:   os.Getenv("PAGEDREST_TEST_PASSWORD"),
		ListPath:   listPath,
		BinaryPath: getBinaryPath(),
		RedisAddr:  os.Getenv("PAGEDREST_TEST_REDIS_ADDR"),
		NATSURL:    os.Getenv("PAGEDREST_TEST_NATS_URL"),
		Verbose:    os.Getenv("PAGEDREST_TEST_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the pagedrest binary.
func getBinaryPath() string {
	if path := os.Getenv("PAGEDREST_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../pagedrest",
		"./pagedrest",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "pagedrest"
}

// SkipIfMissingConfig skips the test unless an API and credentials are set.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.User == "" || config.Password == "" {
		t.Skip("PAGEDREST_TEST_URL, PAGEDREST_TEST_USER or PAGEDREST_TEST_PASSWORD not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the CLI binary cannot be found.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("pagedrest binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs pagedrest commands against the configured API.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a pagedrest command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...) // #nosec G204 -- test binary
	cmd.Env = append(os.Environ(),
		"PAGEDREST_URL="+runner.config.URL,
		"PAGEDREST_USER="+runner.config.User,
		"PAGEDREST_PASSWORD="+runner.config.Password,
	)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// DecodeJSONOutput parses command output as a JSON object.
func DecodeJSONOutput(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, output)
	}

	return result
}
