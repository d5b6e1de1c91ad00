package insts

// Decoder decodes ARM-state machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new ARM instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// encoding is a mask/value pair identifying one instruction format.
type encoding struct {
	mask   uint32
	value  uint32
	format Format
}

// encodings is checked in order. Multiplies, swaps and halfword transfers
// live inside the data-processing space and PSR transfers alias the
// flag-only comparisons, so all of them must be tested before DP.
var encodings = []encoding{
	{0x0FFFFFF0, 0x012FFF10, FormatBX},
	{0x0E000000, 0x0A000000, FormatBranch},
	{0x0F000000, 0x0F000000, FormatSWI},
	{0x0E000010, 0x06000010, FormatUndefined},
	{0x0FC000F0, 0x00000090, FormatMultiply},
	{0x0F8000F0, 0x00800090, FormatMultiplyLong},
	{0x0FB00FF0, 0x01000090, FormatSwap},
	{0x0E400F90, 0x00000090, FormatLdrStrHSReg},
	{0x0E400090, 0x00400090, FormatLdrStrHSImm},
	{0x0FBF0FFF, 0x010F0000, FormatMRS},
	{0x0FBFFFF0, 0x0129F000, FormatMSRReg},
	{0x0DBFF000, 0x0128F000, FormatMSRFlags},
	{0x0C000000, 0x04000000, FormatLdrStr},
	{0x0E000000, 0x08000000, FormatLdmStm},
	{0x0F000000, 0x0E000000, FormatCoprocessor},
	{0x0E000000, 0x0C000000, FormatCoprocessor},
	{0x0C000000, 0x00000000, FormatDataProcessing},
}

// Decode decodes the 32-bit ARM instruction word fetched from addr.
func (d *Decoder) Decode(addr, word uint32) Instruction {
	inst := Instruction{
		Addr:   addr,
		Raw:    word,
		Cond:   Cond(word >> 28),
		Format: FormatUnknown,
	}

	for _, e := range encodings {
		if word&e.mask != e.value {
			continue
		}
		if isHalfword(e.format) && (word>>5)&0x3 == 0 {
			// SH=00 belongs to multiply/swap; anything left over is unallocated.
			return inst
		}
		inst.Format = e.format
		return inst
	}

	return inst
}

func isHalfword(f Format) bool {
	return f == FormatLdrStrHSReg || f == FormatLdrStrHSImm
}
