package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestConsoleAppenderWritesLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithAppenders("test-logger", NewWriterAppender(&buf))
	logger.Infof("hello %s", "world")

	out := buf.String()
	test.That(t, out, test.ShouldContainSubstring, "hello world")
	test.That(t, out, test.ShouldContainSubstring, "INFO")
	test.That(t, out, test.ShouldContainSubstring, "test-logger")
}

func TestFileAppenderWritesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	appender, closer := NewFileAppender(path)
	defer closer.Close()

	logger := NewWithAppenders("file-test", appender)
	logger.Infof("wrote to file")

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strings.Contains(string(contents), "wrote to file"), test.ShouldBeTrue)
}

func TestNamedLoggerNests(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithAppenders("root", NewWriterAppender(&buf)).Named("child")
	logger.Warnf("uh oh")

	out := buf.String()
	test.That(t, strings.Contains(out, "root.child"), test.ShouldBeTrue)
}
