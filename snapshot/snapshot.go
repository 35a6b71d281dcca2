// Package snapshot encodes the state of an Intcode machine as CBOR.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/spaolacci/murmur3"

	"github.com/cor/intcode/intcode"
)

// Image is the saved state of a machine.
type Image struct {
	Memory   []int64 `cbor:"1,keyasint"`
	PC       int     `cbor:"2,keyasint"`
	Status   string  `cbor:"3,keyasint"`
	Fault    string  `cbor:"4,keyasint,omitempty"`
	Outputs  []int64 `cbor:"5,keyasint,omitempty"`
	Steps    int     `cbor:"6,keyasint"`
	Checksum uint64  `cbor:"7,keyasint"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Capture returns an image of m. The outputs emitted so far, if the caller
// recorded them, are saved alongside.
func Capture(m *intcode.Machine, outputs []int64) *Image {
	img := &Image{
		Memory:  m.Memory(),
		PC:      m.PC,
		Status:  m.Status().String(),
		Outputs: append([]int64(nil), outputs...),
		Steps:   m.Steps(),
	}
	if err := m.Err(); err != nil {
		img.Fault = err.Error()
	}
	img.Checksum = checksum(img.Memory)
	return img
}

// ErrTerminal is returned by Image.Machine for images of machines that
// halted or faulted.
var ErrTerminal = errors.New("snapshot: machine is not running")

// Machine returns a running machine restored from img.
func (img *Image) Machine(in intcode.Input, out intcode.Output) (*intcode.Machine, error) {
	if img.Status != intcode.Running.String() {
		return nil, fmt.Errorf("%w (%s)", ErrTerminal, img.Status)
	}
	return intcode.Resume(img.Memory, img.PC, img.Steps, in, out), nil
}

// Marshal serializes img to canonical CBOR.
func Marshal(img *Image) ([]byte, error) {
	return encMode.Marshal(img)
}

// Unmarshal deserializes an image and verifies its memory checksum.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal image: %w", err)
	}
	if sum := checksum(img.Memory); sum != img.Checksum {
		return nil, fmt.Errorf("snapshot: memory checksum %.16x, want %.16x", sum, img.Checksum)
	}
	return &img, nil
}

// WriteFile writes img to the named file.
func WriteFile(name string, img *Image) error {
	b, err := Marshal(img)
	if err != nil {
		return fmt.Errorf("snapshot: marshal image: %w", err)
	}
	return os.WriteFile(name, b, 0644)
}

// ReadFile reads an image from the named file.
func ReadFile(name string) (*Image, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Unmarshal(b)
}

func checksum(mem []int64) uint64 {
	h := murmur3.New64()
	var buf [8]byte
	for _, v := range mem {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}
