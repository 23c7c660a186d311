package module

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-vmctx/errors"
)

// Load validates a WebAssembly binary with wazero and then scans it.
//
// Validation runs first so the layout is never derived from a module that is
// still malformed. The import counts wazero reports are checked against the
// scan.
func Load(ctx context.Context, data []byte) (*Info, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, err, "compile module")
	}
	defer compiled.Close(ctx)

	info, err := Scan(data)
	if err != nil {
		return nil, err
	}

	if n := uint64(len(compiled.ImportedFunctions())); n != uint64(info.ImportedFuncs) {
		return nil, errors.CountMismatch(errors.PhaseValidate, []string{"imported_functions"}, uint64(info.ImportedFuncs), n)
	}
	if n := uint64(len(compiled.ImportedMemories())); n != uint64(info.ImportedMemories) {
		return nil, errors.CountMismatch(errors.PhaseValidate, []string{"imported_memories"}, uint64(info.ImportedMemories), n)
	}

	Logger().Debug("module validated",
		zap.Int("bytes", len(data)),
		zap.Int("importedFuncs", len(compiled.ImportedFunctions())),
		zap.Int("exportedFuncs", len(compiled.ExportedFunctions())))

	return info, nil
}
