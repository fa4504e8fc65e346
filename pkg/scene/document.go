package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DocumentVersion is the current serialization version.
const DocumentVersion = 1

// Document is the serialization format for a whole scene.
type Document struct {
	Version int       `json:"version" bson:"version"`
	Objects []*Object `json:"objects" bson:"objects"`
}

// MarshalObjects serializes objects to pretty-printed JSON.
func MarshalObjects(objs []*Object) ([]byte, error) {
	return json.MarshalIndent(Document{Version: DocumentVersion, Objects: objs}, "", "  ")
}

// UnmarshalObjects decodes a document produced by MarshalObjects.
func UnmarshalObjects(data []byte) ([]*Object, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("decode scene: unsupported version %d", doc.Version)
	}
	return doc.Objects, nil
}

// WriteObjects writes objs as a JSON document to w.
func WriteObjects(w io.Writer, objs []*Object) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Version: DocumentVersion, Objects: objs}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadObjects decodes a JSON document from r.
func ReadObjects(r io.Reader) ([]*Object, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.Objects, nil
}

// ReadFile reads a scene document from disk.
func ReadFile(path string) ([]*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadObjects(f)
}

// WriteFile writes a scene document to disk.
func WriteFile(path string, objs []*Object) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteObjects(f, objs)
}
