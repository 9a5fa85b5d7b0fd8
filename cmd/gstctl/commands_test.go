package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/jwt"
)

func TestRootCmd_Subcomandos(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"migrate", "summarize", "summarize-all", "hsn",
		"export-summary", "export-tally", "regenerate-pdfs", "token",
	}, names)
}

func TestToken_EmiteTokenVerificable(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")
	t.Setenv("JWT_ISSUER", "freshvilla-test")

	var out bytes.Buffer
	c := &cli{out: &out}
	cmd := c.tokenCmd()
	cmd.SetArgs([]string{"--user", "u-1", "--role", "accountant", "--location", "WH-PNQ"})
	require.NoError(t, cmd.Execute())

	claims, err := pkgjwt.Parse("secreto-de-prueba", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "accountant", claims.Role)
	assert.Equal(t, "WH-PNQ", claims.LocationID)
}

func TestToken_RolDesconocido(t *testing.T) {
	c := &cli{out: io.Discard}
	cmd := c.tokenCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--user", "u-1", "--role", "cashier"})
	assert.ErrorContains(t, cmd.Execute(), "cashier")
}

func TestSummarize_EntityTypeInvalido(t *testing.T) {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"summarize", "--entity-type", "office", "--entity-id", "x", "--period", "072025"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse o store")
}

func TestSummarize_FlagsRequeridos(t *testing.T) {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"summarize", "--entity-type", "store"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity-id")
}

func TestDayRange(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	from, to, err := dayRange("2025-07-01", "2025-07-31", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, ist), from)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, ist), to)

	_, _, err = dayRange("2025-07-31", "2025-07-01", ist)
	assert.Error(t, err)

	_, _, err = dayRange("01/07/2025", "2025-07-31", ist)
	assert.ErrorContains(t, err, "--from")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	var report bytes.Buffer

	ok := filepath.Join(dir, "ok.xml")
	require.NoError(t, writeFile(ok, func(w io.Writer) error {
		_, err := w.Write([]byte("<ENVELOPE/>"))
		return err
	}, &report))
	data, err := os.ReadFile(ok)
	require.NoError(t, err)
	assert.Equal(t, "<ENVELOPE/>", string(data))
	assert.Contains(t, report.String(), "ok.xml")

	failed := filepath.Join(dir, "failed.xlsx")
	err = writeFile(failed, func(io.Writer) error { return errors.New("sin resumen") }, &report)
	assert.EqualError(t, err, "sin resumen")
	_, statErr := os.Stat(failed)
	assert.True(t, os.IsNotExist(statErr), "el archivo parcial se elimina")
}
