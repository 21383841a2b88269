package quant

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// WriteFrame writes payload prefixed with its length as a uvarint.
func WriteFrame(w io.Writer, payload []byte) error {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(payload)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one frame written by WriteFrame. Frames longer than
// DefaultLimits.MaxBytes are refused.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(DefaultLimits.MaxBytes) {
		return nil, fmt.Errorf("%w: frame of %d bytes", ErrTooLarge, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteRecord encodes env and writes it as one frame.
func WriteRecord(w io.Writer, env Envelope, opts ...CodecOption) error {
	b, err := EncodeBinary(env, opts...)
	if err != nil {
		return err
	}
	return WriteFrame(w, b)
}

// ReadRecord reads the next frame and decodes it as an Envelope. It returns io.EOF
// at a clean end of stream.
func ReadRecord(r *bufio.Reader, opts ...CodecOption) (Envelope, error) {
	b, err := ReadFrame(r)
	if err != nil {
		return Envelope{}, err
	}
	v, err := DecodeBinary(b, opts...)
	if err != nil {
		return Envelope{}, err
	}
	env, ok := v.(Envelope)
	if !ok {
		return Envelope{}, fmt.Errorf("%w: frame holds %T", ErrBadEnvelope, v)
	}
	return env, nil
}
