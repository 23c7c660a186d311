package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-vmctx/ctxblock"
	"github.com/wippyai/wasm-vmctx/errors"
	"github.com/wippyai/wasm-vmctx/layout"
	"github.com/wippyai/wasm-vmctx/module"
)

// sampleWASM imports one function and defines a memory and an i64 global.
var sampleWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section: () -> ()
	0x02, 0x09, 0x01, // import section: 9 bytes, 1 import
	0x03, 0x65, 0x6e, 0x76, // module: "env"
	0x01, 0x66, // name: "f"
	0x00, 0x00, // kind: func, type 0
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x06, 0x06, 0x01, 0x7e, 0x00, 0x42, 0x00, 0x0b, // global section: i64 const 0
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wasm")
	require.NoError(t, os.WriteFile(path, sampleWASM, 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRegionsCommand(t *testing.T) {
	path := writeSample(t)

	out, err := execute(t, "regions", path)
	require.NoError(t, err)
	require.Contains(t, out, "REGION")
	require.Contains(t, out, "imported_functions")
	require.Contains(t, out, "total 44")

	out, err = execute(t, "--pointer-size", "4", "--no-validate", "regions", path)
	require.NoError(t, err)
	require.Contains(t, out, "total 28")
}

func TestRecordsCommand(t *testing.T) {
	out, err := execute(t, "records", "-p", "4")
	require.NoError(t, err)
	require.Contains(t, out, "caller_checked_func")
	require.Contains(t, out, "body@0/4* vmctx@4/4*")
	require.Contains(t, out, "base@0/4* current_length@4/4")
}

func TestOffsetCommand(t *testing.T) {
	path := writeSample(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "record", args: []string{"offset", path, "defined_memories", "0"}, want: "20"},
		{name: "field", args: []string{"offset", path, "imported_functions", "0", "--field", "vmctx"}, want: "12"},
		{name: "32-bit", args: []string{"-p", "4", "offset", path, "defined_globals", "0"}, want: "20"},
		{name: "hex index", args: []string{"offset", path, "signature_ids", "0x0"}, want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			require.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestOffsetCommandErrors(t *testing.T) {
	path := writeSample(t)

	_, err := execute(t, "offset", path, "defined_memories", "1")
	require.True(t, errors.IsKind(err, errors.KindOutOfRange))

	_, err = execute(t, "offset", path, "heap", "0")
	require.ErrorContains(t, err, "unknown region")

	_, err = execute(t, "offset", path, "defined_memories", "0", "--field", "value")
	require.True(t, errors.IsKind(err, errors.KindInvalidInput))

	_, err = execute(t, "-p", "6", "records")
	require.ErrorContains(t, err, "invalid pointer size")

	_, err = execute(t, "regions", filepath.Join(t.TempDir(), "missing.wasm"))
	require.ErrorContains(t, err, "read file")
}

func TestVerboseInstallsLoggers(t *testing.T) {
	t.Cleanup(func() {
		layout.SetLogger(zap.NewNop())
		module.SetLogger(zap.NewNop())
		ctxblock.SetLogger(zap.NewNop())
	})

	_, err := execute(t, "--verbose", "records")
	require.NoError(t, err)
	require.True(t, layout.Logger().Core().Enabled(zap.DebugLevel))
	require.True(t, module.Logger().Core().Enabled(zap.DebugLevel))
	require.True(t, ctxblock.Logger().Core().Enabled(zap.DebugLevel))
}

func TestBrowseModel(t *testing.T) {
	path := writeSample(t)
	m := newBrowseModel(&options{pointerSize: 8}, path)

	msg := m.loadModule()
	loaded, ok := msg.(loadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)

	update := func(msg tea.Msg) {
		t.Helper()
		next, _ := m.Update(msg)
		m = next.(*browseModel)
	}

	update(loaded)
	require.Len(t, m.regions, 8)
	require.Contains(t, m.View(), "signature_ids")

	update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.selected)
	update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateInputIndex, m.state)

	m.input.SetValue("0")
	update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateShowResult, m.state)
	require.NoError(t, m.result.err)
	require.EqualValues(t, 4, m.result.offset)
	require.Len(t, m.result.fields, 2)
	require.EqualValues(t, 12, m.result.fields[1].offset)

	update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, stateSelectRegion, m.state)

	update(tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("5")
	update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, errors.IsKind(m.result.err, errors.KindOutOfRange))
	require.Contains(t, m.View(), "out_of_range")
}
