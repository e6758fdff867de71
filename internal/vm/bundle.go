package vm

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Chunk file layout:
//   - Magic number (4 bytes): "VELB"
//   - Version (1 byte): 0x01
//   - CBOR-encoded ChunkFile (canonical encoding)
var chunkFileMagic = []byte{'V', 'E', 'L', 'B'}

const chunkFileVersion byte = 0x01

// cborEncMode uses canonical encoding so the same chunk always produces the
// same body bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	cborEncMode = em
}

// ChunkFile is a compiled chunk as stored on disk.
type ChunkFile struct {
	// BuildID identifies one compilation
	BuildID string `cbor:"1,keyasint"`

	// SourceFile is the original source file path (for error messages)
	SourceFile string `cbor:"2,keyasint,omitempty"`

	Code      []byte    `cbor:"3,keyasint"`
	Constants []Value   `cbor:"4,keyasint"`
	Lines     []LineRun `cbor:"5,keyasint"`
}

// NewChunkFile wraps chunk with a fresh build ID.
func NewChunkFile(chunk *Chunk) *ChunkFile {
	return &ChunkFile{
		BuildID:    uuid.NewString(),
		SourceFile: chunk.File,
		Code:       chunk.Code,
		Constants:  chunk.Constants,
		Lines:      chunk.Lines,
	}
}

// Chunk returns the executable chunk stored in the file.
func (f *ChunkFile) Chunk() *Chunk {
	return &Chunk{
		Code:      f.Code,
		Constants: f.Constants,
		Lines:     f.Lines,
		File:      f.SourceFile,
	}
}

// Serialize converts the file to its binary form.
func (f *ChunkFile) Serialize() ([]byte, error) {
	body, err := cborEncMode.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("chunk cbor encoding failed: %w", err)
	}

	buf := new(bytes.Buffer)
	buf.Grow(len(chunkFileMagic) + 1 + len(body))
	buf.Write(chunkFileMagic)
	buf.WriteByte(chunkFileVersion)
	buf.Write(body)
	return buf.Bytes(), nil
}

// SerializeChunk is shorthand for NewChunkFile(chunk).Serialize().
func SerializeChunk(chunk *Chunk) ([]byte, error) {
	return NewChunkFile(chunk).Serialize()
}

// IsChunkFile reports whether data starts with the chunk file magic.
func IsChunkFile(data []byte) bool {
	return bytes.HasPrefix(data, chunkFileMagic)
}

// DeserializeChunkFile decodes a chunk file and checks the chunk's
// structure. Stack effects are not checked.
func DeserializeChunkFile(data []byte) (*ChunkFile, error) {
	if len(data) < len(chunkFileMagic)+1 {
		return nil, fmt.Errorf("bytecode data too short")
	}
	if !IsChunkFile(data) {
		return nil, fmt.Errorf("invalid magic number, expected VELB")
	}

	version := data[len(chunkFileMagic)]
	if version != chunkFileVersion {
		return nil, fmt.Errorf("unsupported bytecode version: %d (this binary supports version %d)",
			version, chunkFileVersion)
	}

	var f ChunkFile
	if err := cbor.Unmarshal(data[len(chunkFileMagic)+1:], &f); err != nil {
		return nil, fmt.Errorf("chunk cbor decoding failed: %w", err)
	}
	if _, err := uuid.Parse(f.BuildID); err != nil {
		return nil, fmt.Errorf("invalid build id %q: %w", f.BuildID, err)
	}
	if err := f.Chunk().Validate(); err != nil {
		return nil, fmt.Errorf("chunk validation failed: %w", err)
	}
	return &f, nil
}

// DeserializeChunk decodes a chunk file and returns its chunk.
func DeserializeChunk(data []byte) (*Chunk, error) {
	f, err := DeserializeChunkFile(data)
	if err != nil {
		return nil, err
	}
	return f.Chunk(), nil
}
