package program

import (
	"codvm/pkg/bytecode"
	"errors"
	"fmt"
	"slices"

	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is bumped whenever the image layout changes
const ImageVersion = 1

var ErrImageMismatch = errors.New("program image mismatch")

// Image is the serialized form of a resolved program
type Image struct {
	Version      int                `cbor:"1,keyasint"`
	Instructions []ImageInstruction `cbor:"2,keyasint"`
	Targets      []int              `cbor:"3,keyasint"`
}

// ImageInstruction is one instruction in source form
type ImageInstruction struct {
	Op   string   `cbor:"1,keyasint"`
	Args []string `cbor:"2,keyasint,omitempty"`
}

// canonical mode keeps images byte-for-byte reproducible
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("program: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalImage serializes a resolved program to CBOR bytes
func MarshalImage(p *Program) ([]byte, error) {
	img := Image{
		Version:      ImageVersion,
		Instructions: make([]ImageInstruction, 0, p.Len()),
		Targets:      p.Targets(),
	}
	for _, in := range p.code {
		img.Instructions = append(img.Instructions, ImageInstruction{
			Op:   string(in.Opcode()),
			Args: in.Args(),
		})
	}
	return cborEncMode.Marshal(img)
}

// UnmarshalImage decodes a CBOR image, rebuilds its instructions and resolves
// them again. The stored target table must match the fresh resolution.
func UnmarshalImage(data []byte) (*Program, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("program: unmarshal image: %w", err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrImageMismatch, img.Version)
	}

	b := NewBuilder()
	for idx, ii := range img.Instructions {
		in, err := bytecode.New(ii.Op, ii.Args...)
		if err != nil {
			return nil, fmt.Errorf("program: image instruction %d: %w", idx, err)
		}
		b.Append(in)
	}

	p, err := b.Resolve()
	if err != nil {
		return nil, err
	}
	if !slices.Equal(p.targets, img.Targets) {
		return nil, fmt.Errorf("%w: stored targets differ from resolved targets", ErrImageMismatch)
	}

	return p, nil
}
