package journal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"clobengine/journalpb"

	"github.com/golang/protobuf/proto"
)

// CommandTag and InverseTag values, persisted on the wire (spec §6's
// on-disk layout: command_tag/inverse_tag are single bytes there; we
// carry them as uint32 inside the protobuf Frame, widening on write
// and narrowing on read).
type CommandTag uint8

const (
	TagPlaceOrder CommandTag = iota
	TagCancelOrder
	TagAmendOrder
	TagControl
)

// Entry is one journal record. Payload is the applied command, already
// encoded by the engine's command codec; Inverse is the live, derived
// InverseOp used directly by Rewind. InversePayload is an optional
// opaque encoding of Inverse kept only so a persisted journal can be
// checksummed across replicas (spec §6) — replay-to-rebuild re-derives
// Inverse from Payload rather than decoding InversePayload, since
// inversion is defined to be a deterministic function of the command
// and the state it was applied to.
type Entry struct {
	Seq            uint64
	CommandTag     CommandTag
	Payload        []byte
	Inverse        InverseOp
	InversePayload []byte
}

// encodeFrame marshals an Entry to its protobuf body. Only Inverse.Kind
// is persisted as InverseTag; InversePayload carries whatever opaque
// bytes the caller supplied for cross-replica checksumming.
func encodeFrame(e Entry) ([]byte, error) {
	f := &journalpb.Frame{
		Seq:            e.Seq,
		CommandTag:     uint32(e.CommandTag),
		Payload:        e.Payload,
		InverseTag:     uint32(e.Inverse.Kind),
		InversePayload: e.InversePayload,
	}
	return proto.Marshal(f)
}

// decodeFrame recovers Seq/CommandTag/Payload for replay. It does not
// reconstruct Inverse (see Entry's doc comment); callers replaying a
// disk journal must re-derive it by applying Payload.
func decodeFrame(body []byte) (Entry, error) {
	var f journalpb.Frame
	if err := proto.Unmarshal(body, &f); err != nil {
		return Entry{}, err
	}
	return Entry{
		Seq:            f.Seq,
		CommandTag:     CommandTag(f.CommandTag),
		Payload:        f.Payload,
		InversePayload: f.InversePayload,
	}, nil
}

// writeRecord frames an encoded protobuf body as [len:4 BE][crc32:4 BE][body],
// matching proto_serializer.go's header layout.
func writeRecord(w io.Writer, body []byte) (int, error) {
	header := make([]byte, 8)
	binary.BigEndian.PutUint32(header[0:4], uint32(len(body)))
	binary.BigEndian.PutUint32(header[4:8], crc32.ChecksumIEEE(body))

	n1, err := w.Write(header)
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(body)
	return n1 + n2, err
}

var ErrCorruptRecord = fmt.Errorf("journal: corrupt record")

// readRecord reads one framed record from r, validating its checksum.
func readRecord(r io.Reader) ([]byte, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err // io.EOF propagates to callers cleanly at a frame boundary
	}
	length := binary.BigEndian.Uint32(header[0:4])
	wantCRC := binary.BigEndian.Uint32(header[4:8])

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, ErrCorruptRecord
	}
	if crc32.ChecksumIEEE(body) != wantCRC {
		return nil, ErrCorruptRecord
	}
	return body, nil
}
