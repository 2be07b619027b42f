package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBinaryPath holds the julie binary built once in TestMain, the same
// build-once/exec-many shape the teacher's cmd/lci/main_test.go uses for
// its CLI tests.
var testBinaryPath string

func TestMain(m *testing.M) {
	tempBinary := filepath.Join(os.TempDir(), "julie-test-"+fmt.Sprintf("%d", time.Now().UnixNano()))

	buildCmd := exec.Command("go", "build", "-o", tempBinary, ".")
	var buildOut bytes.Buffer
	buildCmd.Stdout = &buildOut
	buildCmd.Stderr = &buildOut

	if err := buildCmd.Run(); err != nil {
		fmt.Printf("Failed to build julie for testing: %v\nBuild output: %s\n", err, buildOut.String())
		os.Exit(1)
	}

	testBinaryPath = tempBinary

	code := m.Run()

	os.Remove(testBinaryPath)
	os.Exit(code)
}

func setupTestProject(t *testing.T) string {
	tempDir := t.TempDir()

	testFiles := map[string]string{
		"main.go": `package main

import "fmt"

func main() {
	fmt.Println("hello")
	processData()
}

func processData() {
	helper()
}

func helper() string {
	return "processed"
}`,
		"utils/helper.go": `package utils

// HelperFunction does something useful.
func HelperFunction(input string) string {
	return "processed: " + input
}`,
	}

	for path, content := range testFiles {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	return tempDir
}

func runJulie(args ...string) (string, error) {
	if testBinaryPath == "" {
		return "", fmt.Errorf("test binary not built")
	}
	cmd := exec.Command(testBinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String() + stderr.String(), err
}

func TestScanCommand(t *testing.T) {
	projectDir := setupTestProject(t)

	output, err := runJulie("scan", "--dir", projectDir)
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "scanned")

	dbPath := filepath.Join(projectDir, ".julie", "index.db")
	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr, "scan should create the default index.db")
}

func TestScanThenQueryGoto(t *testing.T) {
	projectDir := setupTestProject(t)

	_, err := runJulie("scan", "--dir", projectDir)
	require.NoError(t, err)

	output, err := runJulie("query", "goto", "--dir", projectDir, "--name", "helper")
	require.NoError(t, err, "output: %s", output)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
}

func TestScanThenQuerySearch(t *testing.T) {
	projectDir := setupTestProject(t)

	_, err := runJulie("scan", "--dir", projectDir)
	require.NoError(t, err)

	output, err := runJulie("query", "search", "--dir", projectDir, "--q", "HelperFunction")
	require.NoError(t, err, "output: %s", output)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
}

func TestUpdateCommand(t *testing.T) {
	projectDir := setupTestProject(t)

	_, err := runJulie("scan", "--dir", projectDir)
	require.NoError(t, err)

	dbPath := filepath.Join(projectDir, ".julie", "index.db")
	mainFile := filepath.Join(projectDir, "main.go")

	extra := []byte("\nfunc extra() {}\n")
	content, err := os.ReadFile(mainFile)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(mainFile, append(content, extra...), 0o644))

	output, err := runJulie("update", "--file", mainFile, "--db", dbPath)
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, output, "updated")
}

func TestScanMissingDirFails(t *testing.T) {
	output, err := runJulie("scan")
	assert.Error(t, err, "output: %s", output)
}

func TestServeCommandAnswersOneRequest(t *testing.T) {
	projectDir := setupTestProject(t)

	cmd := exec.Command(testBinaryPath, "serve", "--dir", projectDir)
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	require.NoError(t, cmd.Start())

	req := map[string]string{"op": "search", "query": "HelperFunction"}
	reqBytes, err := json.Marshal(req)
	require.NoError(t, err)
	_, err = stdin.Write(append(reqBytes, '\n'))
	require.NoError(t, err)
	require.NoError(t, stdin.Close())

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		require.NoError(t, err, "stderr: %s", stderr.String())
	case <-time.After(10 * time.Second):
		cmd.Process.Kill()
		t.Fatal("serve did not exit after stdin closed")
	}

	assert.Contains(t, stdout.String(), `"ok":true`)
}
