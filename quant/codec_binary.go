package quant

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"sort"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Binary layout: every value starts with a tag byte. Lengths and counts are
// uvarints, exponents zigzag varints. Objects are written with sorted keys so equal
// values encode to equal bytes.
const (
	tagNull     byte = 0x00
	tagF        byte = 0x01
	tagT        byte = 0x02
	tagInt      byte = 0x03
	tagDec      byte = 0x04
	tagStr      byte = 0x05
	tagBin      byte = 0x06
	tagArr      byte = 0x07
	tagObj      byte = 0x08
	tagTS       byte = 0x09
	tagUUID     byte = 0x0A
	tagRatio    byte = 0x0B
	tagUnit     byte = 0x0C
	tagQty      byte = 0x0D
	tagTemp     byte = 0x0E
	tagLogUnit  byte = 0x0F
	tagLogQty   byte = 0x10
	tagEnv      byte = 0x11
	tagDims     byte = 0x12
	unitAtomic  byte = 0x00
	unitCompnd  byte = 0x01
	flagOffset  byte = 1 << 0
	flagPrefix  byte = 1 << 1
	flagNoSpace byte = 1 << 2
	flagDivisor byte = 1 << 3
	flagRef     byte = 1 << 0
)

// Limits bounds what the decoder will accept.
type Limits struct{ MaxDepth, MaxBytes int }

var DefaultLimits = Limits{MaxDepth: 1024, MaxBytes: 64 << 20}

// prealloc caps the capacity taken on trust from a declared length or count.
const prealloc = 4096

var (
	ErrUnknownTag  = errors.New("quant: unknown tag")
	ErrBadEnvelope = errors.New("quant: invalid envelope meta")
	ErrTooDeep     = errors.New("quant: nesting depth exceeded")
	ErrTooLarge    = errors.New("quant: encoded value too large")
)

// CodecOption configures EncodeBinary and DecodeBinary.
type CodecOption func(*codec)

type codec struct {
	limits   Limits
	comments bool
}

// WithComments keeps "$comment" keys, which are dropped by default.
func WithComments(keep bool) CodecOption { return func(c *codec) { c.comments = keep } }

func WithLimits(l Limits) CodecOption { return func(c *codec) { c.limits = l } }

func newCodec(opts []CodecOption) *codec {
	c := &codec{limits: DefaultLimits}
	for _, o := range opts {
		o(c)
	}
	return c
}

func putUvarint(w io.Writer, x uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], x)
	_, err := w.Write(buf[:n])
	return err
}

func putZigZag(w io.Writer, i int64) error {
	return putUvarint(w, uint64((i<<1)^(i>>63)))
}

func writeBytes(w io.Writer, b []byte) error {
	if err := putUvarint(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func writeString(w io.Writer, s string) error { return writeBytes(w, []byte(s)) }

func writeTag(w io.Writer, t byte) error {
	_, err := w.Write([]byte{t})
	return err
}

// EncodeBinary encodes nil, bool, integers, floats (through their shortest decimal
// text), strings, []byte, time.Time, uuid.UUID, Decimal, Ratio, Dimensions, Unit,
// Quantity, Temperature, LogUnit, LogQuantity, Envelope, []any and map[string]any.
// Anything else goes through encoding/json first.
func EncodeBinary(v any, opts ...CodecOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := newCodec(opts).encode(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *codec) encode(w *bytes.Buffer, v any, depth int) error {
	if depth > c.limits.MaxDepth {
		return ErrTooDeep
	}
	switch x := v.(type) {
	case nil:
		return writeTag(w, tagNull)
	case bool:
		if x {
			return writeTag(w, tagT)
		}
		return writeTag(w, tagF)
	case string:
		if err := writeTag(w, tagStr); err != nil {
			return err
		}
		return writeString(w, x)
	case float64:
		if math.Trunc(x) == x && math.Abs(x) < 1<<53 {
			return c.encode(w, int64(x), depth)
		}
		d, err := DecFromFloat64(x)
		if err != nil {
			return err
		}
		return c.encode(w, d, depth)
	case float32:
		return c.encode(w, float64(x), depth)
	case int, int8, int16, int32, int64:
		return writeInt(w, big.NewInt(reflect.ValueOf(x).Int()))
	case uint, uint16, uint32, uint64:
		return writeInt(w, new(big.Int).SetUint64(reflect.ValueOf(x).Uint()))
	case *big.Int:
		return writeInt(w, x)
	case json.Number:
		d, err := DecFromString(x.String())
		if err != nil {
			return err
		}
		if d.Exponent() == 0 {
			return writeInt(w, d.Coefficient().Mul(d.Coefficient(), big.NewInt(int64(d.Sign()))))
		}
		return c.encode(w, d, depth)
	case Decimal:
		if err := writeTag(w, tagDec); err != nil {
			return err
		}
		return writeDec(w, x)
	case []byte:
		if err := writeTag(w, tagBin); err != nil {
			return err
		}
		return writeBytes(w, x)
	case time.Time:
		if err := writeTag(w, tagTS); err != nil {
			return err
		}
		return writeString(w, x.UTC().Format(time.RFC3339Nano))
	case uuid.UUID:
		if err := writeTag(w, tagUUID); err != nil {
			return err
		}
		_, err := w.Write(x[:])
		return err
	case Ratio:
		if err := writeTag(w, tagRatio); err != nil {
			return err
		}
		return writeRatio(w, x)
	case Dimensions:
		if err := writeTag(w, tagDims); err != nil {
			return err
		}
		return writeDims(w, x)
	case Unit:
		if err := writeTag(w, tagUnit); err != nil {
			return err
		}
		return writeUnit(w, x)
	case Quantity:
		if err := writeTag(w, tagQty); err != nil {
			return err
		}
		return writeQuantity(w, x)
	case Temperature:
		if err := writeTag(w, tagTemp); err != nil {
			return err
		}
		return writeQuantity(w, Quantity{number: x.number, unit: x.scale, uncertainty: x.uncertainty})
	case LogUnit:
		if err := writeTag(w, tagLogUnit); err != nil {
			return err
		}
		return writeLogUnit(w, x)
	case LogQuantity:
		if err := writeTag(w, tagLogQty); err != nil {
			return err
		}
		if err := writeDec(w, x.number); err != nil {
			return err
		}
		if err := writeLogUnit(w, x.unit); err != nil {
			return err
		}
		return writeQuantity(w, x.uncertainty)
	case []any:
		if err := writeTag(w, tagArr); err != nil {
			return err
		}
		if err := putUvarint(w, uint64(len(x))); err != nil {
			return err
		}
		for _, it := range x {
			if err := c.encode(w, it, depth+1); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if err := writeTag(w, tagObj); err != nil {
			return err
		}
		ks := make([]string, 0, len(x))
		for k := range x {
			if k == "$comment" && !c.comments {
				continue
			}
			ks = append(ks, k)
		}
		sort.Strings(ks)
		if err := putUvarint(w, uint64(len(ks))); err != nil {
			return err
		}
		for _, k := range ks {
			if err := writeString(w, k); err != nil {
				return err
			}
			if err := c.encode(w, x[k], depth+1); err != nil {
				return err
			}
		}
		return nil
	case Envelope:
		if err := writeTag(w, tagEnv); err != nil {
			return err
		}
		if err := c.encode(w, x.Meta.object(), depth+1); err != nil {
			return err
		}
		return c.encode(w, x.Body, depth+1)
	default:
		blob, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("quant: unsupported type %T", x)
		}
		dec := json.NewDecoder(bytes.NewReader(blob))
		dec.UseNumber()
		var g any
		if err := dec.Decode(&g); err != nil {
			return err
		}
		return c.encode(w, g, depth+1)
	}
}

func writeInt(w io.Writer, z *big.Int) error {
	if err := writeTag(w, tagInt); err != nil {
		return err
	}
	sign := byte(0x00)
	if z.Sign() < 0 {
		sign = 0x01
	}
	mag := new(big.Int).Abs(z).Bytes()
	if err := putUvarint(w, uint64(len(mag)+1)); err != nil {
		return err
	}
	if _, err := w.Write([]byte{sign}); err != nil {
		return err
	}
	_, err := w.Write(mag)
	return err
}

func writeDec(w io.Writer, x Decimal) error {
	d := x.dec()
	sign := byte(0x00)
	if d.Negative {
		sign = 0x01
	}
	if _, err := w.Write([]byte{sign}); err != nil {
		return err
	}
	if err := putZigZag(w, int64(d.Exponent)); err != nil {
		return err
	}
	return writeBytes(w, d.Coeff.Bytes())
}

func writeRatio(w io.Writer, r Ratio) error {
	if err := putZigZag(w, r.Num()); err != nil {
		return err
	}
	return putUvarint(w, uint64(r.Den()))
}

func writeDims(w io.Writer, v Dimensions) error {
	for _, e := range v {
		if err := writeRatio(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeAtomic(w io.Writer, u Unit) error {
	if err := writeString(w, u.symbol); err != nil {
		return err
	}
	if err := writeString(w, u.name); err != nil {
		return err
	}
	if err := writeDims(w, u.dims); err != nil {
		return err
	}
	if err := writeDec(w, u.atomicScale()); err != nil {
		return err
	}
	var flags byte
	if u.hasOffset {
		flags |= flagOffset
	}
	if u.prefixed {
		flags |= flagPrefix
	}
	if u.noSpace {
		flags |= flagNoSpace
	}
	if u.divisor.d != nil {
		flags |= flagDivisor
	}
	if _, err := w.Write([]byte{flags}); err != nil {
		return err
	}
	if u.hasOffset {
		if err := writeDec(w, u.offset); err != nil {
			return err
		}
	}
	if u.divisor.d != nil {
		return writeDec(w, u.divisor)
	}
	return nil
}

// writeUnit stores the full structure of u, so decoding needs no unit catalog.
func writeUnit(w io.Writer, u Unit) error {
	if !u.isCompound() {
		if _, err := w.Write([]byte{unitAtomic}); err != nil {
			return err
		}
		return writeAtomic(w, u)
	}
	if _, err := w.Write([]byte{unitCompnd}); err != nil {
		return err
	}
	if err := putUvarint(w, uint64(len(u.factors))); err != nil {
		return err
	}
	for _, f := range u.factors {
		if err := writeAtomic(w, f.Unit); err != nil {
			return err
		}
		if err := writeRatio(w, f.Exp); err != nil {
			return err
		}
	}
	return nil
}

func writeQuantity(w io.Writer, q Quantity) error {
	if err := writeDec(w, q.number); err != nil {
		return err
	}
	if err := writeUnit(w, q.unit); err != nil {
		return err
	}
	return writeDec(w, q.uncertainty)
}

func writeLogUnit(w io.Writer, u LogUnit) error {
	for _, s := range []string{u.symbol, u.name, u.suffix} {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	if err := writeDec(w, u.base); err != nil {
		return err
	}
	if err := writeDec(w, u.prefactor); err != nil {
		return err
	}
	var flags byte
	if u.hasRef {
		flags |= flagRef
	}
	if u.prefixed {
		flags |= flagPrefix
	}
	if _, err := w.Write([]byte{flags}); err != nil {
		return err
	}
	if u.hasRef {
		return writeQuantity(w, u.reference)
	}
	return nil
}

// DecodeBinary decodes one value. Integers come back as int64, or *big.Int when they
// do not fit; decimals as Decimal; objects as map[string]any.
func DecodeBinary(b []byte, opts ...CodecOption) (any, error) {
	c := newCodec(opts)
	if len(b) > c.limits.MaxBytes {
		return nil, ErrTooLarge
	}
	return c.decode(bufio.NewReader(bytes.NewReader(b)), 0)
}

type reader interface {
	io.Reader
	io.ByteReader
}

func (c *codec) readN(r reader, n uint64) ([]byte, error) {
	if n > uint64(c.limits.MaxBytes) {
		return nil, ErrTooLarge
	}
	if n <= prealloc {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	// Large lengths grow with the data actually read.
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *codec) readBytes(r reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	return c.readN(r, n)
}

func (c *codec) readString(r reader) (string, error) {
	b, err := c.readBytes(r)
	return string(b), err
}

func readZigZag(r io.ByteReader) (int64, error) {
	u, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return int64((u >> 1) ^ uint64((int64(u&1)<<63)>>63)), nil
}

func (c *codec) decode(r reader, depth int) (any, error) {
	if depth > c.limits.MaxDepth {
		return nil, ErrTooDeep
	}
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNull:
		return nil, nil
	case tagF:
		return false, nil
	case tagT:
		return true, nil
	case tagStr:
		return c.readString(r)
	case tagBin:
		return c.readBytes(r)
	case tagTS:
		s, err := c.readString(r)
		if err != nil {
			return nil, err
		}
		return time.Parse(time.RFC3339Nano, s)
	case tagUUID:
		b, err := c.readN(r, 16)
		if err != nil {
			return nil, err
		}
		return uuid.FromBytes(b)
	case tagInt:
		return c.readInt(r)
	case tagDec:
		return c.readDec(r)
	case tagRatio:
		return readRatio(r)
	case tagDims:
		return readDims(r)
	case tagUnit:
		return c.readUnit(r)
	case tagQty:
		return c.readQuantity(r)
	case tagTemp:
		q, err := c.readQuantity(r)
		if err != nil {
			return nil, err
		}
		return Temperature{number: q.number, scale: q.unit, uncertainty: q.uncertainty}, nil
	case tagLogUnit:
		return c.readLogUnit(r)
	case tagLogQty:
		n, err := c.readDec(r)
		if err != nil {
			return nil, err
		}
		u, err := c.readLogUnit(r)
		if err != nil {
			return nil, err
		}
		unc, err := c.readQuantity(r)
		if err != nil {
			return nil, err
		}
		return LogQuantity{number: n, unit: u, uncertainty: unc}, nil
	case tagArr:
		count, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		if count > uint64(c.limits.MaxBytes) {
			return nil, ErrTooLarge
		}
		out := make([]any, 0, min(count, prealloc))
		for i := uint64(0); i < count; i++ {
			v, err := c.decode(r, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case tagObj:
		count, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		if count > uint64(c.limits.MaxBytes) {
			return nil, ErrTooLarge
		}
		obj := make(map[string]any, min(count, prealloc))
		for i := uint64(0); i < count; i++ {
			k, err := c.readString(r)
			if err != nil {
				return nil, err
			}
			v, err := c.decode(r, depth+1)
			if err != nil {
				return nil, err
			}
			if k == "$comment" && !c.comments {
				continue
			}
			obj[k] = v
		}
		return obj, nil
	case tagEnv:
		m, err := c.decode(r, depth+1)
		if err != nil {
			return nil, err
		}
		obj, ok := m.(map[string]any)
		if !ok {
			return nil, ErrBadEnvelope
		}
		env := Envelope{Meta: metaFromObject(obj)}
		if env.Body, err = c.decode(r, depth+1); err != nil {
			return nil, err
		}
		return env, nil
	}
	return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, tag)
}

func (c *codec) readInt(r reader) (any, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return int64(0), nil
	}
	b, err := c.readN(r, n)
	if err != nil {
		return nil, err
	}
	z := new(big.Int).SetBytes(b[1:])
	if b[0] == 0x01 {
		z.Neg(z)
	}
	if z.IsInt64() {
		return z.Int64(), nil
	}
	return z, nil
}

func (c *codec) readDec(r reader) (Decimal, error) {
	sign, err := r.ReadByte()
	if err != nil {
		return Decimal{}, err
	}
	exp, err := readZigZag(r)
	if err != nil {
		return Decimal{}, err
	}
	if exp > math.MaxInt32 || exp < math.MinInt32 {
		return Decimal{}, fmt.Errorf("%w: decimal exponent %d", ErrParse, exp)
	}
	coef, err := c.readBytes(r)
	if err != nil {
		return Decimal{}, err
	}
	d := new(apd.Decimal)
	d.Coeff.SetBytes(coef)
	d.Exponent = int32(exp)
	d.Negative = sign == 0x01
	return Decimal{d: d}, nil
}

func readRatio(r io.ByteReader) (Ratio, error) {
	n, err := readZigZag(r)
	if err != nil {
		return Ratio{}, err
	}
	d, err := binary.ReadUvarint(r)
	if err != nil {
		return Ratio{}, err
	}
	if d == 0 || d > math.MaxInt64 {
		return Ratio{}, fmt.Errorf("%w: ratio denominator %d", ErrParse, d)
	}
	return Frac(n, int64(d)), nil
}

func readDims(r io.ByteReader) (Dimensions, error) {
	var v Dimensions
	for i := range v {
		e, err := readRatio(r)
		if err != nil {
			return Dimensions{}, err
		}
		v[i] = e
	}
	return v, nil
}

func (c *codec) readAtomic(r reader) (Unit, error) {
	var u Unit
	var err error
	if u.symbol, err = c.readString(r); err != nil {
		return Unit{}, err
	}
	if u.name, err = c.readString(r); err != nil {
		return Unit{}, err
	}
	if u.dims, err = readDims(r); err != nil {
		return Unit{}, err
	}
	if u.scale, err = c.readDec(r); err != nil {
		return Unit{}, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return Unit{}, err
	}
	u.hasOffset = flags&flagOffset != 0
	u.prefixed = flags&flagPrefix != 0
	u.noSpace = flags&flagNoSpace != 0
	if u.hasOffset {
		if u.offset, err = c.readDec(r); err != nil {
			return Unit{}, err
		}
	}
	if flags&flagDivisor != 0 {
		if u.divisor, err = c.readDec(r); err != nil {
			return Unit{}, err
		}
	}
	return u, nil
}

func (c *codec) readUnit(r reader) (Unit, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return Unit{}, err
	}
	switch kind {
	case unitAtomic:
		return c.readAtomic(r)
	case unitCompnd:
	default:
		return Unit{}, fmt.Errorf("%w: unit kind 0x%02x", ErrUnknownTag, kind)
	}
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return Unit{}, err
	}
	if count > uint64(c.limits.MaxDepth) {
		return Unit{}, ErrTooDeep
	}
	fs := make([]Factor, 0, count)
	for i := uint64(0); i < count; i++ {
		u, err := c.readAtomic(r)
		if err != nil {
			return Unit{}, err
		}
		e, err := readRatio(r)
		if err != nil {
			return Unit{}, err
		}
		fs = append(fs, Factor{Unit: u, Exp: e})
	}
	var dims Dimensions
	for _, f := range fs {
		dims = dims.Add(f.Unit.dims.Scale(f.Exp))
	}
	return Unit{dims: dims, factors: fs}, nil
}

func (c *codec) readQuantity(r reader) (Quantity, error) {
	n, err := c.readDec(r)
	if err != nil {
		return Quantity{}, err
	}
	u, err := c.readUnit(r)
	if err != nil {
		return Quantity{}, err
	}
	unc, err := c.readDec(r)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, unit: u, uncertainty: unc}, nil
}

func (c *codec) readLogUnit(r reader) (LogUnit, error) {
	var u LogUnit
	var err error
	for _, s := range []*string{&u.symbol, &u.name, &u.suffix} {
		if *s, err = c.readString(r); err != nil {
			return LogUnit{}, err
		}
	}
	if u.base, err = c.readDec(r); err != nil {
		return LogUnit{}, err
	}
	if u.prefactor, err = c.readDec(r); err != nil {
		return LogUnit{}, err
	}
	flags, err := r.ReadByte()
	if err != nil {
		return LogUnit{}, err
	}
	u.hasRef = flags&flagRef != 0
	u.prefixed = flags&flagPrefix != 0
	if u.hasRef {
		if u.reference, err = c.readQuantity(r); err != nil {
			return LogUnit{}, err
		}
	}
	return u, nil
}
