package container

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a container.
type Format int

const (
	CBOR Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "cbor"
}

// FormatFor infers the encoding from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return CBOR
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	dec := cbor.DecOptions{
		IntDec:           cbor.IntDecConvertSigned,
		MaxArrayElements: 1 << 27,
	}
	if decMode, err = dec.DecMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes a node tree.
func Marshal(n *Node, f Format) ([]byte, error) {
	if f == YAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(n); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	data, err := encMode.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode cbor: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a node tree.
func Unmarshal(data []byte, f Format) (*Node, error) {
	root := &Node{}
	if f == YAML {
		if err := yaml.Unmarshal(data, root); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	} else if err := decMode.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("decode cbor: %w", err)
	}
	return root, nil
}

// Read loads a container file.
func Read(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, FormatFor(path))
}

// Write stores a container file, choosing the encoding from the extension.
func Write(path string, n *Node) error {
	data, err := Marshal(n, FormatFor(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
