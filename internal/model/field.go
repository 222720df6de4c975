package model

// Field identifies one extractable attribute of a sample report record.
//
// Design decision: We use an enumerated type with one accessor per field
// rather than ad hoc string keys because the supported field set is small
// and fixed. Adding a field means adding one constant and one accessor in
// the record package, not branching on arbitrary keys.
type Field int

// Supported fields, in canonical output column order.
const (
	// FieldFamily is the malware family label produced by the external
	// classifier. It is the only field that triggers enrichment.
	FieldFamily Field = iota

	// FieldCPU is the CPU architecture recorded by the ELF analysis
	// metadata nested inside the record.
	FieldCPU

	// FieldFirstSeen is the timestamp the sample was first observed.
	FieldFirstSeen

	// FieldSize is the sample size in bytes.
	FieldSize

	// FieldMD5 is the sample's MD5 digest.
	FieldMD5
)

// AllFields lists every supported field in canonical column order:
// family, CPU, first_seen, size, md5. Output columns always follow
// this order regardless of the order flags were given.
var AllFields = []Field{FieldFamily, FieldCPU, FieldFirstSeen, FieldSize, FieldMD5}

// Column returns the output table column name for the field.
func (f Field) Column() string {
	switch f {
	case FieldFamily:
		return "family"
	case FieldCPU:
		return "CPU"
	case FieldFirstSeen:
		return "first_seen"
	case FieldSize:
		return "size"
	case FieldMD5:
		return "md5"
	default:
		return "unknown"
	}
}

// String returns the column name. It implements fmt.Stringer so fields
// read naturally in log output.
func (f Field) String() string {
	return f.Column()
}

// FieldSet records which optional fields a run should extract.
// Each toggle is purely additive to the output column set.
type FieldSet struct {
	// Family enables the family column and activates the enrichment client.
	Family bool

	// CPU enables the CPU architecture column.
	CPU bool

	// FirstSeen enables the first_seen column.
	FirstSeen bool

	// Size enables the size column.
	Size bool

	// MD5 enables the md5 column.
	MD5 bool
}

// Has reports whether the set includes the given field.
func (s FieldSet) Has(f Field) bool {
	switch f {
	case FieldFamily:
		return s.Family
	case FieldCPU:
		return s.CPU
	case FieldFirstSeen:
		return s.FirstSeen
	case FieldSize:
		return s.Size
	case FieldMD5:
		return s.MD5
	default:
		return false
	}
}

// Active returns the enabled fields in canonical column order.
func (s FieldSet) Active() []Field {
	active := make([]Field, 0, len(AllFields))
	for _, f := range AllFields {
		if s.Has(f) {
			active = append(active, f)
		}
	}
	return active
}
