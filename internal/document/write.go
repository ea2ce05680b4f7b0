package document

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// WriteAtomic replaces path with data using the temp-file, fsync, rename
// pattern. The temp file lives in the target directory so the rename never
// crosses filesystems. On any failure the temp file is removed and the
// target is left untouched. An existing file's permission bits are kept.
func WriteAtomic(path string, data []byte) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Field is one header assignment for SetFields. Value is encoded with
// yaml.v3, so strings become scalars and []string becomes a sequence.
type Field struct {
	Key   string
	Value any
}

// SetFields rewrites the header of the document at path. Existing keys keep
// their position, new keys are appended, derived keys are removed, and the
// body bytes are preserved verbatim. A document without a header gains one.
func SetFields(path string, fields ...Field) error {
	doc, err := Read(path)
	if err != nil {
		return err
	}
	out, err := doc.WithFields(fields...)
	if err != nil {
		return err
	}
	if err := WriteAtomic(path, out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WithFields returns the document bytes with fields applied to the header.
func (d *Document) WithFields(fields ...Field) ([]byte, error) {
	mapping := d.node
	if mapping == nil {
		mapping = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	for _, f := range fields {
		var value yaml.Node
		if err := value.Encode(f.Value); err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.Key, err)
		}
		if i := keyIndex(mapping, f.Key); i >= 0 {
			// Keep any comment attached to the old value.
			value.LineComment = mapping.Content[i+1].LineComment
			mapping.Content[i+1] = &value
			continue
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&value,
		)
	}
	for _, key := range DerivedKeys {
		if i := keyIndex(mapping, key); i >= 0 {
			mapping.Content = slices.Delete(mapping.Content, i, i+2)
		}
	}

	var header bytes.Buffer
	enc := yaml.NewEncoder(&header)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}

	var out bytes.Buffer
	out.WriteString(delimiter + "\n")
	out.Write(header.Bytes())
	out.WriteString(delimiter + "\n")
	if d.HasHeader {
		out.Write(d.Raw[d.bodyOffset:])
	} else {
		out.Write(d.Raw)
	}
	return out.Bytes(), nil
}

// keyIndex returns the index of key in a mapping node's content, or -1.
func keyIndex(mapping *yaml.Node, key string) int {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// Exists reports whether path names an existing regular file.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.Mode().IsRegular(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
