package module

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-vmctx/errors"
)

var sectionNames = map[byte]string{
	SectionCustom:    "custom",
	SectionType:      "type",
	SectionImport:    "import",
	SectionFunction:  "function",
	SectionTable:     "table",
	SectionMemory:    "memory",
	SectionGlobal:    "global",
	SectionExport:    "export",
	SectionStart:     "start",
	SectionElement:   "element",
	SectionCode:      "code",
	SectionData:      "data",
	SectionDataCount: "datacount",
	SectionTag:       "tag",
}

// Scan counts the entities declared by a WebAssembly binary. Sections that
// do not contribute counts are skipped without being decoded.
func Scan(data []byte) (*Info, error) {
	r := newReader(data, "header", 0)

	magic, err := r.readU32LE()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, r.fail(nil, "invalid wasm magic number")
	}

	version, err := r.readU32LE()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, r.fail(nil, "unsupported wasm version %d", version)
	}

	info := &Info{}
	var lastOrder int

	for r.remaining() > 0 {
		r.section = "section header"

		id, err := r.readByte()
		if err != nil {
			return nil, err
		}

		if id != SectionCustom {
			order := sectionOrder(id)
			if order == 0 {
				return nil, r.fail(nil, "unknown section ID 0x%02x", id)
			}
			if order <= lastOrder {
				return nil, r.fail(nil, "%s section appears out of order", sectionNames[id])
			}
			lastOrder = order
		}

		size, err := r.readU32()
		if err != nil {
			return nil, err
		}
		start := r.pos()
		payload, err := r.readBytes(size)
		if err != nil {
			return nil, err
		}

		if err := info.scanSection(id, newReader(payload, sectionNames[id], start)); err != nil {
			return nil, err
		}
	}

	if ce := Logger().Check(zap.DebugLevel, "module scanned"); ce != nil {
		ce.Write(
			zap.Int("bytes", len(data)),
			zap.Uint32("types", info.Types),
			zap.Uint32("importedFuncs", info.ImportedFuncs),
			zap.Uint32("importedTables", info.ImportedTables),
			zap.Uint32("importedMemories", info.ImportedMemories),
			zap.Uint32("importedGlobals", info.ImportedGlobals),
			zap.Uint32("funcs", info.Funcs),
			zap.Uint32("tables", info.Tables),
			zap.Uint32("memories", info.Memories),
			zap.Uint32("globals", info.Globals),
		)
	}

	return info, nil
}

func (m *Info) scanSection(id byte, r *reader) error {
	var err error

	switch id {
	case SectionType:
		err = m.scanTypes(r)
	case SectionImport:
		err = m.scanImports(r)
	case SectionFunction:
		m.Funcs, err = r.readU32()
		return err
	case SectionTable:
		m.Tables, err = r.readU32()
		return err
	case SectionMemory:
		m.Memories, err = r.readU32()
		return err
	case SectionGlobal:
		m.Globals, err = r.readU32()
		return err
	case SectionExport:
		m.Exports, err = r.readU32()
		return err
	case SectionTag:
		m.Tags, err = r.readU32()
		return err
	default:
		return nil
	}

	if err != nil {
		return err
	}
	if r.remaining() != 0 {
		return r.fail(nil, "%d trailing bytes in section", r.remaining())
	}
	return nil
}

func (m *Info) scanTypes(r *reader) error {
	n, err := r.readU32()
	if err != nil {
		return err
	}

	for i := uint32(0); i < n; i++ {
		form, err := r.readByte()
		if err != nil {
			return err
		}

		switch form {
		case formFunc:
			// params, then results
			for k := 0; k < 2; k++ {
				count, err := r.readU32()
				if err != nil {
					return err
				}
				for j := uint32(0); j < count; j++ {
					if err := r.skipValType(); err != nil {
						return err
					}
				}
			}
		case formRec, formSub, formSubFinal:
			e := errors.Unsupported(errors.PhaseScan, "GC type definitions")
			e.Path = []string{r.section}
			return e
		default:
			return r.fail(nil, "unknown type form 0x%02x", form)
		}
	}

	m.Types = n
	return nil
}

func (m *Info) scanImports(r *reader) error {
	n, err := r.readU32()
	if err != nil {
		return err
	}

	for i := uint32(0); i < n; i++ {
		if err := r.skipName(); err != nil {
			return err
		}
		if err := r.skipName(); err != nil {
			return err
		}

		kind, err := r.readByte()
		if err != nil {
			return err
		}

		switch kind {
		case KindFunc:
			if _, err := r.readU32(); err != nil {
				return err
			}
			m.ImportedFuncs++
		case KindTable:
			if err := r.skipValType(); err != nil {
				return err
			}
			if err := r.skipLimits(); err != nil {
				return err
			}
			m.ImportedTables++
		case KindMemory:
			if err := r.skipLimits(); err != nil {
				return err
			}
			m.ImportedMemories++
		case KindGlobal:
			if err := r.skipValType(); err != nil {
				return err
			}
			mut, err := r.readByte()
			if err != nil {
				return err
			}
			if mut > 1 {
				return r.fail(nil, "invalid global mutability 0x%02x", mut)
			}
			m.ImportedGlobals++
		case KindTag:
			if _, err := r.readByte(); err != nil {
				return err
			}
			if _, err := r.readU32(); err != nil {
				return err
			}
			m.ImportedTags++
		default:
			return r.fail(nil, "unknown import kind 0x%02x", kind)
		}
	}
	return nil
}
