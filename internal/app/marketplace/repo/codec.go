package repo

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// Records are encoded in protobuf wire format with hand-assigned field numbers.
// Field numbers are the compatibility contract: they are never renumbered or
// reused, new fields take new numbers, and decoders skip numbers they do not
// know. The schema_version column only changes when that rule has to be broken.

// fieldReader walks the fields of one encoded record.
type fieldReader struct {
	b []byte
}

func (r *fieldReader) next() (protowire.Number, protowire.Type, bool, error) {
	if len(r.b) == 0 {
		return 0, 0, false, nil
	}
	num, typ, n := protowire.ConsumeTag(r.b)
	if n < 0 {
		return 0, 0, false, protowire.ParseError(n)
	}
	r.b = r.b[n:]
	return num, typ, true, nil
}

func (r *fieldReader) varint(num protowire.Number, typ protowire.Type) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("field %d: want varint, got wire type %d", num, typ)
	}
	v, n := protowire.ConsumeVarint(r.b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	r.b = r.b[n:]
	return v, nil
}

func (r *fieldReader) bytes(num protowire.Number, typ protowire.Type) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, fmt.Errorf("field %d: want bytes, got wire type %d", num, typ)
	}
	v, n := protowire.ConsumeBytes(r.b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	r.b = r.b[n:]
	return v, nil
}

func (r *fieldReader) str(num protowire.Number, typ protowire.Type) (string, error) {
	b, err := r.bytes(num, typ)
	return string(b), err
}

func (r *fieldReader) amount(num protowire.Number, typ protowire.Type) (domain.Amount, error) {
	b, err := r.bytes(num, typ)
	if err != nil {
		return domain.Amount{}, err
	}
	return domain.AmountFromBytes(b)
}

func (r *fieldReader) time(num protowire.Number, typ protowire.Type) (time.Time, error) {
	v, err := r.varint(num, typ)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, int64(v)).UTC(), nil
}

func (r *fieldReader) skip(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, r.b)
	if n < 0 {
		return protowire.ParseError(n)
	}
	r.b = r.b[n:]
	return nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendAmountField(b []byte, num protowire.Number, a domain.Amount) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, a.Bytes())
}

func appendTimeField(b []byte, num protowire.Number, t time.Time) []byte {
	return appendVarintField(b, num, uint64(t.UnixNano()))
}
