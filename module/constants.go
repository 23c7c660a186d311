package module

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs.
const (
	SectionCustom    byte = 0
	SectionType      byte = 1
	SectionImport    byte = 2
	SectionFunction  byte = 3
	SectionTable     byte = 4
	SectionMemory    byte = 5
	SectionGlobal    byte = 6
	SectionExport    byte = 7
	SectionStart     byte = 8
	SectionElement   byte = 9
	SectionCode      byte = 10
	SectionData      byte = 11
	SectionDataCount byte = 12
	SectionTag       byte = 13
)

// Import descriptor kinds.
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
	KindTag    byte = 4
)

// Type section forms.
const (
	formFunc     byte = 0x60
	formRec      byte = 0x4E
	formSub      byte = 0x50
	formSubFinal byte = 0x4F
)

// Reference types that carry a heap type immediate.
const (
	valRefNull byte = 0x63
	valRef     byte = 0x64
)

// sectionOrder returns the canonical position of a non-custom section.
// Tag sits between Memory and Global, DataCount between Element and Code.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11
	case SectionCode:
		return 12
	case SectionData:
		return 13
	}
	return 0
}

// validValType reports whether b is a single-byte value type: a number,
// vector, or abstract reference type.
func validValType(b byte) bool {
	switch {
	case b >= 0x7B && b <= 0x7F: // i32 i64 f32 f64 v128
		return true
	case b >= 0x69 && b <= 0x74: // abstract heap type shorthands
		return true
	}
	return false
}
