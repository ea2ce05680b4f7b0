// Package document reads and rewrites markdown documents that carry a YAML
// header between "---" delimiter lines.
//
// A document without an opening delimiter has an empty header. Known header
// keys are decoded into Header fields; every other key is kept, in order, in
// Header.Extra so rewriting a header never drops fields a user added.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/compass/pkg/types"
)

// Header keys recognized by the engine.
const (
	KeyID          = "id"
	KeyName        = "name"
	KeyStatus      = "status"
	KeyDescription = "description"
	KeyCreated     = "created"
	KeyLastWorked  = "last_worked"
	KeyTags        = "tags"
	KeyTemplate    = "template"
)

// DerivedKeys are recomputed from the ledger and never trusted from a
// header. SetFields strips them.
var DerivedKeys = []string{"total_tasks", "completed_tasks", "progress"}

const delimiter = "---"

// Header is the decoded document header.
type Header struct {
	ID          string
	Name        string
	Status      string
	Description string
	Created     string
	LastWorked  string
	Tags        []string
	Template    bool

	// Keys lists every header key in document order.
	Keys []string
	// Extra holds keys the engine does not recognize.
	Extra map[string]any
}

// Has reports whether key appears in the header.
func (h Header) Has(key string) bool {
	for _, k := range h.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Empty reports whether the header has no keys.
func (h Header) Empty() bool { return len(h.Keys) == 0 }

// Document is a read document. Raw holds the exact file bytes; Body is the
// text after the header's closing delimiter line.
type Document struct {
	Path      string
	HasHeader bool
	Header    Header
	Body      string
	Raw       []byte

	node       *yaml.Node
	bodyOffset int
}

// Read loads and parses the document at path. A missing file returns a
// *types.DocumentError wrapping types.ErrDocumentNotFound; a header that is
// present but unparseable returns a *types.HeaderError.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.DocumentError{Path: path, Err: types.ErrDocumentNotFound}
		}
		return nil, &types.DocumentError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse splits data into header and body. path is only used for error
// context.
func Parse(path string, data []byte) (*Document, error) {
	doc := &Document{Path: path, Raw: data}

	first, rest, _ := cutLine(data)
	if trimCR(first) != delimiter {
		doc.Body = string(data)
		doc.Header.Extra = map[string]any{}
		return doc, nil
	}

	offset := len(data) - len(rest)
	headerStart := offset
	for {
		if len(rest) == 0 {
			return nil, &types.HeaderError{Path: path, Reason: "missing closing delimiter"}
		}
		line, next, _ := cutLine(rest)
		if trimCR(line) == delimiter || trimCR(line) == "..." {
			doc.HasHeader = true
			doc.bodyOffset = len(data) - len(next)
			doc.Body = string(next)
			header, node, err := decodeHeader(path, data[headerStart:offset])
			if err != nil {
				return nil, err
			}
			doc.Header = header
			doc.node = node
			return doc, nil
		}
		offset += len(line)
		rest = next
	}
}

// decodeHeader parses the YAML between the delimiters.
func decodeHeader(path string, raw []byte) (Header, *yaml.Node, error) {
	h := Header{Extra: map[string]any{}}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return h, nil, &types.HeaderError{Path: path, Reason: err.Error()}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty header between delimiters.
		return h, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return h, nil, &types.HeaderError{Path: path, Line: mapping.Line + 1, Reason: "header is not a key/value mapping"}
	}

	seen := make(map[string]bool, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		k, v := mapping.Content[i], mapping.Content[i+1]
		key := k.Value
		if seen[key] {
			return h, nil, &types.HeaderError{Path: path, Line: k.Line + 1, Reason: fmt.Sprintf("duplicate key %q", key)}
		}
		seen[key] = true
		h.Keys = append(h.Keys, key)

		if err := h.assign(key, v); err != nil {
			return h, nil, &types.HeaderError{Path: path, Line: v.Line + 1, Reason: err.Error()}
		}
	}
	return h, mapping, nil
}

// assign stores one key/value pair in the typed field or the extras bag.
func (h *Header) assign(key string, v *yaml.Node) error {
	switch key {
	case KeyID:
		h.ID = scalar(v)
	case KeyName:
		h.Name = scalar(v)
	case KeyStatus:
		h.Status = scalar(v)
	case KeyDescription:
		h.Description = scalar(v)
	case KeyCreated:
		h.Created = scalar(v)
	case KeyLastWorked:
		h.LastWorked = scalar(v)
	case KeyTags:
		tags, err := stringList(v)
		if err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		h.Tags = tags
	case KeyTemplate:
		var b bool
		if err := v.Decode(&b); err != nil {
			return fmt.Errorf("template: %w", err)
		}
		h.Template = b
	default:
		var val any
		if err := v.Decode(&val); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		h.Extra[key] = val
	}
	return nil
}

// scalar returns the string form of a scalar node; non-scalars yield "".
func scalar(v *yaml.Node) string {
	if v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return ""
	}
	return strings.TrimSpace(v.Value)
}

// stringList accepts either a YAML sequence of scalars or a comma-separated
// scalar.
func stringList(v *yaml.Node) ([]string, error) {
	switch v.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, errors.New("expected a list of strings")
			}
			if s := strings.TrimSpace(item.Value); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case yaml.ScalarNode:
		if v.Tag == "!!null" {
			return nil, nil
		}
		var out []string
		for _, part := range strings.Split(v.Value, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, errors.New("expected a list of strings")
	}
}

// cutLine splits off the first line including its '\n'. found is false when
// data has no newline.
func cutLine(data []byte) (line, rest []byte, found bool) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return data, nil, false
	}
	return data[:i+1], data[i+1:], true
}

// trimCR strips the line terminator.
func trimCR(line []byte) string {
	return strings.TrimRight(string(line), "\r\n")
}
