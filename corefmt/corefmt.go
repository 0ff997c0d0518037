package corefmt

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/zintix-labs/revlab/errs"
)

// Builder accumulates decimal fields separated by single spaces.
//
// The textual snapshot format of every engine and distribution in this
// module is a flat sequence of such fields, so a snapshot produced by a
// Builder can always be consumed by a Scanner in the same field order.
type Builder struct {
	sb strings.Builder
}

// PutUint64 appends an unsigned decimal field.
func (b *Builder) PutUint64(v uint64) *Builder {
	b.sep()
	b.sb.WriteString(strconv.FormatUint(v, 10))
	return b
}

// PutInt64 appends a signed decimal field.
func (b *Builder) PutInt64(v int64) *Builder {
	b.sep()
	b.sb.WriteString(strconv.FormatInt(v, 10))
	return b
}

// PutFloat64 appends a float field using the shortest representation
// that survives a round trip through ParseFloat.
func (b *Builder) PutFloat64(v float64) *Builder {
	b.sep()
	b.sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	return b
}

// PutString appends a raw token. The token must not contain whitespace;
// callers own that invariant (all users of this package write fixed tags).
func (b *Builder) PutString(s string) *Builder {
	b.sep()
	b.sb.WriteString(s)
	return b
}

// String returns the accumulated snapshot text.
func (b *Builder) String() string { return b.sb.String() }

func (b *Builder) sep() {
	if b.sb.Len() > 0 {
		b.sb.WriteByte(' ')
	}
}

// Scanner walks the whitespace-separated fields of a snapshot string.
//
// Errors are sticky: after the first failure every further call is a
// no-op returning zero values, and Err reports the original cause. This
// lets decode paths read a whole fixed-shape record and check once.
type Scanner struct {
	fields []string
	pos    int
	err    error
}

// NewScanner splits s into fields.
func NewScanner(s string) *Scanner {
	return &Scanner{fields: strings.Fields(s)}
}

// Uint64 reads the next field as an unsigned decimal.
func (sc *Scanner) Uint64() uint64 {
	f, ok := sc.next("uint64")
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(f, 10, 64)
	if err != nil {
		sc.err = errs.Wrap(err, "decode field "+strconv.Itoa(sc.pos-1)+" as uint64 failed")
		return 0
	}
	return v
}

// Int64 reads the next field as a signed decimal.
func (sc *Scanner) Int64() int64 {
	f, ok := sc.next("int64")
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(f, 10, 64)
	if err != nil {
		sc.err = errs.Wrap(err, "decode field "+strconv.Itoa(sc.pos-1)+" as int64 failed")
		return 0
	}
	return v
}

// Float64 reads the next field as a float.
func (sc *Scanner) Float64() float64 {
	f, ok := sc.next("float64")
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		sc.err = errs.Wrap(err, "decode field "+strconv.Itoa(sc.pos-1)+" as float64 failed")
		return 0
	}
	return v
}

// Token reads the next field as a raw string.
func (sc *Scanner) Token() string {
	f, _ := sc.next("token")
	return f
}

// Expect reads the next field and fails the scanner unless it equals want.
// Used for the fixed type tags at the head of engine snapshots.
func (sc *Scanner) Expect(want string) bool {
	f, ok := sc.next("token")
	if !ok {
		return false
	}
	if f != want {
		sc.err = errs.NewWarn("decode failed: expect tag " + want + ", got " + f)
		return false
	}
	return true
}

// Remaining reports how many unread fields are left.
func (sc *Scanner) Remaining() int { return len(sc.fields) - sc.pos }

// Err returns the first error encountered, if any.
func (sc *Scanner) Err() error { return sc.err }

// Done returns sc.Err(), additionally failing when unread fields remain.
// Decode paths call it last so trailing garbage is rejected.
func (sc *Scanner) Done() error {
	if sc.err == nil && sc.Remaining() > 0 {
		sc.err = errs.NewWarn("decode failed: " + strconv.Itoa(sc.Remaining()) + " unread trailing fields")
	}
	return sc.err
}

func (sc *Scanner) next(kind string) (string, bool) {
	if sc.err != nil {
		return "", false
	}
	if sc.pos >= len(sc.fields) {
		sc.err = errs.NewWarn("decode failed: missing " + kind + " field at index " + strconv.Itoa(sc.pos))
		return "", false
	}
	f := sc.fields[sc.pos]
	sc.pos++
	return f, true
}

// EncodeBase64 encodes raw bytes for JSON/HTTP text transport.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 is the counterpart of EncodeBase64.
func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64 failed")
	}
	return b, nil
}

// EncodeHex is a best-effort helper for logs/debugging where you want
// stable, copyable text. Hex is larger than Base64 but very human-friendly.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex decodes text produced by EncodeHex.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode hex failed")
	}
	return b, nil
}
