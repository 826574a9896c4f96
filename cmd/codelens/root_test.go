package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeFor_ArgErrorMapsToUsage(t *testing.T) {
	assert.Equal(t, exitUsage, exitCodeFor(argError{errors.New("bad path")}))
}

func TestExitCodeFor_OtherErrorMapsToError(t *testing.T) {
	assert.Equal(t, exitError, exitCodeFor(errors.New("boom")))
}

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"index", "serve", "watch", "sync"} {
		assert.True(t, names[want], "expected %s subcommand", want)
	}
}
