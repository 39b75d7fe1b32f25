// bytecodes.go - standard JVM bytecode mnemonics, giving the jump table
// the concrete opcode space a real loader routes.
package core

// JVM bytecode opcodes (Java Virtual Machine Specification, chapter 6).
// These constants give DefaultJumpTable and cmd/jopasm real bytecode
// names to route instead of bare integers.
const (
	NOP         = 0x00
	ACONST_NULL = 0x01
	ICONST_M1   = 0x02
	ICONST_0    = 0x03
	ICONST_1    = 0x04
	ICONST_2    = 0x05
	ICONST_3    = 0x06
	ICONST_4    = 0x07
	ICONST_5    = 0x08
	LCONST_0    = 0x09
	LCONST_1    = 0x0A
	BIPUSH      = 0x10
	SIPUSH      = 0x11
	LDC         = 0x12
	LDC_W       = 0x13
	LDC2_W      = 0x14

	ILOAD   = 0x15
	LLOAD   = 0x16
	ALOAD   = 0x19
	ILOAD_0 = 0x1A
	ILOAD_1 = 0x1B
	ILOAD_2 = 0x1C
	ILOAD_3 = 0x1D
	LLOAD_0 = 0x1E
	LLOAD_1 = 0x1F
	LLOAD_2 = 0x20
	LLOAD_3 = 0x21
	ALOAD_0 = 0x2A
	ALOAD_1 = 0x2B
	ALOAD_2 = 0x2C
	ALOAD_3 = 0x2D

	IALOAD = 0x2E
	LALOAD = 0x2F
	FALOAD = 0x30
	DALOAD = 0x31
	AALOAD = 0x32
	BALOAD = 0x33
	CALOAD = 0x34
	SALOAD = 0x35

	ISTORE   = 0x36
	LSTORE   = 0x37
	ASTORE   = 0x3A
	ISTORE_0 = 0x3B
	ISTORE_1 = 0x3C
	ISTORE_2 = 0x3D
	ISTORE_3 = 0x3E
	LSTORE_0 = 0x3F
	LSTORE_1 = 0x40
	LSTORE_2 = 0x41
	LSTORE_3 = 0x42
	ASTORE_0 = 0x4B
	ASTORE_1 = 0x4C
	ASTORE_2 = 0x4D
	ASTORE_3 = 0x4E

	IASTORE = 0x4F
	LASTORE = 0x50
	FASTORE = 0x51
	DASTORE = 0x52
	AASTORE = 0x53
	BASTORE = 0x54
	CASTORE = 0x55
	SASTORE = 0x56

	POP    = 0x57
	POP2   = 0x58
	DUP    = 0x59
	DUP_X1 = 0x5A
	DUP_X2 = 0x5B
	DUP2   = 0x5C
	SWAP   = 0x5F

	IADD = 0x60
	LADD = 0x61
	ISUB = 0x64
	LSUB = 0x65
	IMUL = 0x68
	LMUL = 0x69
	IDIV = 0x6C
	LDIV = 0x6D
	IREM = 0x70
	LREM = 0x71
	INEG = 0x74
	LNEG = 0x75

	ISHL  = 0x78
	LSHL  = 0x79
	ISHR  = 0x7A
	LSHR  = 0x7B
	IUSHR = 0x7C
	LUSHR = 0x7D

	IAND = 0x7E
	LAND = 0x7F
	IOR  = 0x80
	LOR  = 0x81
	IXOR = 0x82
	LXOR = 0x83

	IINC = 0x84

	I2L = 0x85
	I2F = 0x86
	I2D = 0x87
	L2I = 0x88

	LCMP = 0x94

	// IFGE/IFGT/IFLE and their if_icmp counterparts keep their standard
	// JVM numbering: the available flag set (eq/lt/zf/nf) can't represent
	// >=/>/<=, so these never join branchFamily and never go through the
	// shared jbr handler's low-3-bit tp decode.
	IFGE      = 0x9C
	IFGT      = 0x9D
	IFLE      = 0x9E
	IF_ICMPGE = 0xA2
	IF_ICMPGT = 0xA3
	IF_ICMPLE = 0xA4

	JSR          = 0xA8
	RET          = 0xA9
	TABLESWITCH  = 0xAA
	LOOKUPSWITCH = 0xAB
	IRETURN      = 0xAC
	LRETURN      = 0xAD
	FRETURN      = 0xAE
	DRETURN      = 0xAF
	ARETURN      = 0xB0
	RETURN       = 0xB1

	GETSTATIC       = 0xB2
	PUTSTATIC       = 0xB3
	GETFIELD        = 0xB4
	PUTFIELD        = 0xB5
	INVOKEVIRTUAL   = 0xB6
	INVOKESPECIAL   = 0xB7
	INVOKESTATIC    = 0xB8
	INVOKEINTERFACE = 0xB9
	INVOKEDYNAMIC   = 0xBA
	NEW             = 0xBB
	NEWARRAY        = 0xBC
	ANEWARRAY       = 0xBD
	ARRAYLENGTH     = 0xBE
	ATHROW          = 0xBF
	CHECKCAST       = 0xC0
	INSTANCEOF      = 0xC1

	MONITORENTER = 0xC2
	MONITOREXIT  = 0xC3

	GOTO_W = 0xC8

	// branchFamily block: these eleven bytecodes all dispatch through the
	// shared jbr microcode handler, which reads its branch-type tag (tp,
	// the eq/lt/eq/!eq/zf/!zf/nf/true table in bcf.go) from the bytecode's
	// own low 3 bits rather than from a per-opcode field. Standard JVM numbering
	// doesn't have that property (ifeq=0x99 has low3=1, matching tp1/lt
	// instead of its own tp4/zf), so this loader reassigns them into a
	// fresh block chosen to satisfy it, trading away the real-JVM opcode
	// values for bytecodes the shared handler must decode structurally.
	IF_ICMPEQ = 0xE0 // tp0: eq
	IF_ICMPLT = 0xE1 // tp1: lt
	IFNULL    = 0xE2 // tp2: eq
	IFNONNULL = 0xE3 // tp3: !eq
	IFEQ      = 0xE4 // tp4: zf
	IFNE      = 0xE5 // tp5: !zf
	IFLT      = 0xE6 // tp6: nf
	GOTO      = 0xE7 // tp7: true

	IF_ICMPNE = 0xEB // tp3: !eq
	IF_ACMPEQ = 0xEC // tp4: zf
	IF_ACMPNE = 0xED // tp5: !zf
)

// bytecodeNames maps the opcode space above to its mnemonic, for
// DefaultJumpTable and cmd/jopasm's jumptable subcommand.
var bytecodeNames = map[byte]string{
	NOP: "nop", ACONST_NULL: "aconst_null", ICONST_M1: "iconst_m1",
	ICONST_0: "iconst_0", ICONST_1: "iconst_1", ICONST_2: "iconst_2",
	ICONST_3: "iconst_3", ICONST_4: "iconst_4", ICONST_5: "iconst_5",
	LCONST_0: "lconst_0", LCONST_1: "lconst_1",
	BIPUSH: "bipush", SIPUSH: "sipush", LDC: "ldc", LDC_W: "ldc_w", LDC2_W: "ldc2_w",

	ILOAD: "iload", LLOAD: "lload", ALOAD: "aload",
	ILOAD_0: "iload_0", ILOAD_1: "iload_1", ILOAD_2: "iload_2", ILOAD_3: "iload_3",
	LLOAD_0: "lload_0", LLOAD_1: "lload_1", LLOAD_2: "lload_2", LLOAD_3: "lload_3",
	ALOAD_0: "aload_0", ALOAD_1: "aload_1", ALOAD_2: "aload_2", ALOAD_3: "aload_3",

	IALOAD: "iaload", LALOAD: "laload", FALOAD: "faload", DALOAD: "daload",
	AALOAD: "aaload", BALOAD: "baload", CALOAD: "caload", SALOAD: "saload",

	ISTORE: "istore", LSTORE: "lstore", ASTORE: "astore",
	ISTORE_0: "istore_0", ISTORE_1: "istore_1", ISTORE_2: "istore_2", ISTORE_3: "istore_3",
	LSTORE_0: "lstore_0", LSTORE_1: "lstore_1", LSTORE_2: "lstore_2", LSTORE_3: "lstore_3",
	ASTORE_0: "astore_0", ASTORE_1: "astore_1", ASTORE_2: "astore_2", ASTORE_3: "astore_3",

	IASTORE: "iastore", LASTORE: "lastore", FASTORE: "fastore", DASTORE: "dastore",
	AASTORE: "aastore", BASTORE: "bastore", CASTORE: "castore", SASTORE: "sastore",

	POP: "pop", POP2: "pop2", DUP: "dup", DUP_X1: "dup_x1", DUP_X2: "dup_x2",
	DUP2: "dup2", SWAP: "swap",

	IADD: "iadd", LADD: "ladd", ISUB: "isub", LSUB: "lsub",
	IMUL: "imul", LMUL: "lmul", IDIV: "idiv", LDIV: "ldiv",
	IREM: "irem", LREM: "lrem", INEG: "ineg", LNEG: "lneg",

	ISHL: "ishl", LSHL: "lshl", ISHR: "ishr", LSHR: "lshr", IUSHR: "iushr", LUSHR: "lushr",
	IAND: "iand", LAND: "land", IOR: "ior", LOR: "lor", IXOR: "ixor", LXOR: "lxor",

	IINC: "iinc", I2L: "i2l", I2F: "i2f", I2D: "i2d", L2I: "l2i",

	LCMP: "lcmp", IFEQ: "ifeq", IFNE: "ifne", IFLT: "iflt", IFGE: "ifge",
	IFGT: "ifgt", IFLE: "ifle",
	IF_ICMPEQ: "if_icmpeq", IF_ICMPNE: "if_icmpne", IF_ICMPLT: "if_icmplt",
	IF_ICMPGE: "if_icmpge", IF_ICMPGT: "if_icmpgt", IF_ICMPLE: "if_icmple",
	IF_ACMPEQ: "if_acmpeq", IF_ACMPNE: "if_acmpne",

	GOTO: "goto", JSR: "jsr", RET: "ret", TABLESWITCH: "tableswitch",
	LOOKUPSWITCH: "lookupswitch", IRETURN: "ireturn", LRETURN: "lreturn",
	FRETURN: "freturn", DRETURN: "dreturn", ARETURN: "areturn", RETURN: "return",

	GETSTATIC: "getstatic", PUTSTATIC: "putstatic", GETFIELD: "getfield", PUTFIELD: "putfield",
	INVOKEVIRTUAL: "invokevirtual", INVOKESPECIAL: "invokespecial", INVOKESTATIC: "invokestatic",
	INVOKEINTERFACE: "invokeinterface", INVOKEDYNAMIC: "invokedynamic",
	NEW: "new", NEWARRAY: "newarray", ANEWARRAY: "anewarray", ARRAYLENGTH: "arraylength",
	ATHROW: "athrow", CHECKCAST: "checkcast", INSTANCEOF: "instanceof",

	MONITORENTER: "monitorenter", MONITOREXIT: "monitorexit",

	IFNULL: "ifnull", IFNONNULL: "ifnonnull", GOTO_W: "goto_w",
}

// BytecodeName returns the mnemonic for a bytecode, or "" if unassigned.
func BytecodeName(b byte) string {
	return bytecodeNames[b]
}
