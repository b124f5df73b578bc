package review

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

const (
	// DiscriminatorSize is the size of the type marker leading every record.
	DiscriminatorSize = 8

	// lengthPrefixSize is the u32 length written before each text field.
	lengthPrefixSize = 4

	fixedSpace = DiscriminatorSize + AuthorSize + 1 + lengthPrefixSize + MaxTitleLength + lengthPrefixSize

	// InitSpace is the capacity reserved for a new record. It covers the
	// declared maximum lengths, not the lengths actually written.
	InitSpace = fixedSpace + MaxDescriptionLength
)

// Discriminator marks the bytes of a stored review.
var Discriminator = func() [DiscriminatorSize]byte {
	var d [DiscriminatorSize]byte
	sum := sha256.Sum256([]byte("account:MovieAccountState"))
	copy(d[:], sum[:DiscriminatorSize])
	return d
}()

// ResizedSpace is the capacity held by a record after an update writes
// description. The title slot keeps its declared maximum.
func ResizedSpace(description string) int64 {
	return int64(fixedSpace + len(description))
}

// Encode serializes r in the persisted layout:
// discriminator, author, rating, title and description, each text field
// prefixed by its little-endian u32 byte length.
func Encode(r *Review) []byte {
	buf := make([]byte, 0, DiscriminatorSize+AuthorSize+1+2*lengthPrefixSize+len(r.Title)+len(r.Description))
	buf = append(buf, Discriminator[:]...)
	buf = append(buf, r.Author[:]...)
	buf = append(buf, r.Rating)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.Title)))
	buf = append(buf, r.Title...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.Description)))
	buf = append(buf, r.Description...)
	return buf
}

// Decode parses bytes written by Encode. Trailing bytes are ignored so a
// record can be read from a slot larger than its content.
func Decode(data []byte) (*Review, error) {
	d := decoder{buf: data}

	disc := d.next(DiscriminatorSize)
	if d.err != nil {
		return nil, d.err
	}
	if [DiscriminatorSize]byte(disc) != Discriminator {
		return nil, fmt.Errorf("%w: discriminator mismatch", ErrInvalidRecord)
	}

	r := &Review{}
	copy(r.Author[:], d.next(AuthorSize))
	if rating := d.next(1); d.err == nil {
		r.Rating = rating[0]
	}
	r.Title = d.text("title")
	r.Description = d.text("description")
	if d.err != nil {
		return nil, d.err
	}
	return r, nil
}

type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) next(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.buf)-d.off < n {
		d.err = fmt.Errorf("%w: truncated at offset %d", ErrInvalidRecord, d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) text(field string) string {
	prefix := d.next(lengthPrefixSize)
	if d.err != nil {
		return ""
	}
	n := binary.LittleEndian.Uint32(prefix)
	if uint64(n) > uint64(len(d.buf)-d.off) {
		d.err = fmt.Errorf("%w: %s length %d exceeds remaining %d bytes", ErrInvalidRecord, field, n, len(d.buf)-d.off)
		return ""
	}
	return string(d.next(int(n)))
}
