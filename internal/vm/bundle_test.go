package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

func TestChunkFile_SerializeDeserializeRoundtrip(t *testing.T) {
	compiler := NewCompiler()
	compiler.SetFile("calc.vela")
	chunk, err := compiler.Compile("(1 + 2) *\n-3")
	if err != nil {
		t.Fatalf("compilation error: %s", err)
	}

	data, err := SerializeChunk(chunk)
	if err != nil {
		t.Fatalf("SerializeChunk failed: %v", err)
	}
	if !IsChunkFile(data) {
		t.Fatalf("serialized data does not start with the magic number")
	}

	f, err := DeserializeChunkFile(data)
	if err != nil {
		t.Fatalf("DeserializeChunkFile failed: %v", err)
	}
	if _, err := uuid.Parse(f.BuildID); err != nil {
		t.Errorf("BuildID %q is not a UUID: %v", f.BuildID, err)
	}

	restored := f.Chunk()
	if !bytes.Equal(restored.Code, chunk.Code) {
		t.Errorf("Code: got %v, want %v", restored.Code, chunk.Code)
	}
	if restored.File != "calc.vela" {
		t.Errorf("File: got %q, want %q", restored.File, "calc.vela")
	}
	if len(restored.Lines) != len(chunk.Lines) {
		t.Fatalf("Lines: got %v, want %v", restored.Lines, chunk.Lines)
	}
	for i := range chunk.Lines {
		if restored.Lines[i] != chunk.Lines[i] {
			t.Errorf("Lines[%d]: got %v, want %v", i, restored.Lines[i], chunk.Lines[i])
		}
	}
	for i := range chunk.Constants {
		if !restored.Constants[i].Equals(chunk.Constants[i]) {
			t.Errorf("Constants[%d]: got %s, want %s", i, restored.Constants[i], chunk.Constants[i])
		}
	}

	result, err := New().Execute(restored)
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	testNumberValue(t, result, -9)
}

func TestChunkFile_BuildIDsDiffer(t *testing.T) {
	chunk := mustCompile(t, "1")
	a := NewChunkFile(chunk)
	b := NewChunkFile(chunk)
	if a.BuildID == b.BuildID {
		t.Errorf("two compilations share build id %s", a.BuildID)
	}
}

func TestChunkFile_CanonicalEncoding(t *testing.T) {
	f := NewChunkFile(mustCompile(t, "1 + 2 * 3"))

	first, err := f.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	second, err := f.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("serializing the same file twice produced different bytes")
	}
}

func TestChunkFile_DeserializeErrors(t *testing.T) {
	good, err := SerializeChunk(mustCompile(t, "1"))
	if err != nil {
		t.Fatalf("SerializeChunk failed: %v", err)
	}

	encode := func(f *ChunkFile) []byte {
		body, err := cborEncMode.Marshal(f)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return append([]byte{'V', 'E', 'L', 'B', chunkFileVersion}, body...)
	}

	badVersion := append([]byte{}, good...)
	badVersion[4] = 0x7F

	noReturn := NewChunk()
	noReturn.WriteConstantIndex(3, 1)
	badChunk := NewChunkFile(noReturn)

	badValue := NewChunkFile(mustCompile(t, "1"))
	badValue.Constants = []Value{{Type: ValBool, Data: 2}}

	badID := NewChunkFile(mustCompile(t, "1"))
	badID.BuildID = "not-a-uuid"

	garbage, _ := cbor.Marshal([]string{"not", "a", "chunk"})

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "too short"},
		{"short", []byte("VEL"), "too short"},
		{"bad magic", append([]byte("FXYB"), good[4:]...), "invalid magic"},
		{"bad version", badVersion, "unsupported bytecode version: 127"},
		{"garbage body", append([]byte{'V', 'E', 'L', 'B', chunkFileVersion}, garbage...), "decoding failed"},
		{"invalid constant", encode(badChunk), "validation failed"},
		{"bad build id", encode(badID), "invalid build id"},
		{"malformed constant", encode(badValue), "malformed value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeChunk(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err.Error(), tt.want)
			}
		})
	}
}
