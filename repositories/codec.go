package repositories

import (
	"chat-inbox/errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Blobs are written in protobuf wire format without generated types.
// Each collection is a list of embedded records under field 1; every record
// uses explicit field numbers so readers skip fields they do not know.
const listItemField protowire.Number = 1

type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func (f field) str() string {
	return string(f.bytes)
}

func (f field) boolean() bool {
	return f.varint != 0
}

func (f field) int() int {
	return int(int64(f.varint))
}

// time decodes Unix nanoseconds back to a UTC time.
func (f field) time() time.Time {
	return time.Unix(0, int64(f.varint)).UTC()
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendOptionalString writes s even when empty, so presence survives a round trip.
func appendOptionalString(b []byte, num protowire.Number, s *string) []byte {
	if s == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

// appendTime stores t as Unix nanoseconds. The zero time is left out.
func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(t.UnixNano()))
}

func appendEmbedded(b []byte, num protowire.Number, inner []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

// decodeFields walks every top-level field of b. Fixed-width and group fields
// are skipped.
func decodeFields(b []byte, visit func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return corrupt(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			if n = protowire.ConsumeFieldValue(num, typ, b); n < 0 {
				return corrupt(n)
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return corrupt(n)
		}
		b = b[n:]
		if err := visit(f); err != nil {
			return err
		}
	}
	return nil
}

// encodeList wraps already-encoded records into a collection blob.
func encodeList(records [][]byte) []byte {
	var b []byte
	for _, r := range records {
		b = appendEmbedded(b, listItemField, r)
	}
	return b
}

// decodeList splits a collection blob into its records, preserving order.
func decodeList(b []byte) ([][]byte, error) {
	var records [][]byte
	err := decodeFields(b, func(f field) error {
		if f.num != listItemField {
			return nil
		}
		if f.typ != protowire.BytesType {
			return fmt.Errorf("%w: list item has wire type %d", errors.ErrCorruptBlob, f.typ)
		}
		records = append(records, f.bytes)
		return nil
	})
	return records, err
}

func corrupt(n int) error {
	return fmt.Errorf("%w: %v", errors.ErrCorruptBlob, protowire.ParseError(n))
}
