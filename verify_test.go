package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwilliams/rsinc/internal/cliout"
	"github.com/cwilliams/rsinc/internal/reconcile"
)

func TestVerifyReporter_TalliesAcrossFolders(t *testing.T) {
	var buf bytes.Buffer
	r := &verifyReporter{inner: cliout.New(&buf, strings.NewReader(""))}

	r.ReportPass("cpp", true, []reconcile.Action{{Kind: reconcile.ActionPush}})
	r.ReportPass("docs", true, []reconcile.Action{{Kind: reconcile.ActionPull}, {Kind: reconcile.ActionDelete}})

	assert.Equal(t, 3, r.total)
}

func TestVerifyReporter_ZeroActionsAcrossAllFolders(t *testing.T) {
	var buf bytes.Buffer
	r := &verifyReporter{inner: cliout.New(&buf, strings.NewReader(""))}

	r.ReportPass("cpp", true, nil)

	assert.Equal(t, 0, r.total)
}

func TestVerifyReporter_ConfirmNeverProceeds(t *testing.T) {
	r := &verifyReporter{inner: cliout.New(&bytes.Buffer{}, strings.NewReader(""))}

	proceed, err := r.Confirm("cpp", 5)
	require.NoError(t, err)
	assert.False(t, proceed)
}
