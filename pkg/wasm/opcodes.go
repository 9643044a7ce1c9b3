package wasm

// Section IDs (WASM binary format, spec §4.7). This subset's module never
// touches linear memory, so there is no memory section ID here.
const (
	secType     byte = 1
	secFunction byte = 3
	secExport   byte = 7
	secCode     byte = 10
)

// Value and block types.
const (
	valTypeI32   byte = 0x7f
	blockTypeVoid byte = 0x40
)

const funcTypeTag byte = 0x60

// Export kind tags.
const exportKindFunc byte = 0x00

// Structured control instructions.
const (
	opBlock byte = 0x02
	opLoop  byte = 0x03
	opIf    byte = 0x04
	opElse  byte = 0x05
	opEnd   byte = 0x0b
	opBr    byte = 0x0c
	opBrIf  byte = 0x0d
	opReturn byte = 0x0f
)

// Variable and constant instructions.
const (
	opLocalGet byte = 0x20
	opLocalSet byte = 0x21
	opI32Const byte = 0x41
)

// Numeric instructions used by this subset's operator set.
const (
	opI32Eqz  byte = 0x45
	opI32Eq   byte = 0x46
	opI32Ne   byte = 0x47
	opI32LtS  byte = 0x48
	opI32GtS  byte = 0x4a
	opI32LeS  byte = 0x4c
	opI32GeS  byte = 0x4e
	opI32Add  byte = 0x6a
	opI32Sub  byte = 0x6b
	opI32Mul  byte = 0x6c
	opI32DivS byte = 0x6d
	opI32RemS byte = 0x6f
	opI32Xor  byte = 0x73
	opDrop    byte = 0x1a
)
