package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDefaults(t *testing.T) {
	log, closer, err := Setup(Options{})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestSetupParsesLevel(t *testing.T) {
	log, _, err := Setup(Options{Level: "debug"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestSetupRejectsBadLevel(t *testing.T) {
	_, _, err := Setup(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestQuietOverridesLevel(t *testing.T) {
	log, _, err := Setup(Options{Level: "debug", Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
}

func TestSetupWithLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	log, closer, err := Setup(Options{File: path})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	log.Warn("hello from the test")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
}
