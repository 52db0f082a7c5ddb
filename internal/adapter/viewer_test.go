package adapter

import (
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewer_ConfiguredCommand(t *testing.T) {
	v := NewViewer("myviewer", []string{"--fullscreen"}, NullLogger())

	var started *exec.Cmd
	v.start = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}

	require.NoError(t, v.Open("/tmp/a.jpg"))
	require.NotNil(t, started)
	assert.Equal(t, []string{"myviewer", "--fullscreen", "/tmp/a.jpg"}, started.Args)
}

func TestViewer_ConfiguredArgsNotMutated(t *testing.T) {
	args := make([]string, 1, 4)
	args[0] = "-x"
	v := NewViewer("myviewer", args, NullLogger())
	v.start = func(*exec.Cmd) error { return nil }

	require.NoError(t, v.Open("/tmp/a.jpg"))
	require.NoError(t, v.Open("/tmp/b.jpg"))
	assert.Equal(t, []string{"-x"}, v.args)
}

func TestViewer_CandidateThenDefault(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("candidate list is linux only")
	}

	v := NewViewer("", nil, NullLogger())
	v.lookPath = func(name string) (string, error) {
		if name == "eog" {
			return "/usr/bin/eog", nil
		}
		return "", exec.ErrNotFound
	}
	assert.Equal(t, []string{"eog", "/tmp/a.png"}, v.resolve("/tmp/a.png").Args)

	v.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	assert.Equal(t, []string{"xdg-open", "/tmp/a.png"}, v.resolve("/tmp/a.png").Args)
}

func TestViewer_StartError(t *testing.T) {
	v := NewViewer("myviewer", nil, NullLogger())
	v.start = func(*exec.Cmd) error { return errors.New("no such file") }

	assert.ErrorContains(t, v.Open("/tmp/a.jpg"), "failed to start viewer")
}
