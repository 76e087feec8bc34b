// Package intake validates user-selected capture files before they are uploaded.
package intake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yildizm/PcapView/internal/config"
	"github.com/yildizm/PcapView/internal/logger"
)

// FileHandle is anything that can describe and open a candidate file
type FileHandle interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// SelectedFile is a validated capture ready for submission. It is immutable.
type SelectedFile struct {
	name   string
	size   int64
	handle FileHandle
}

// Name returns the file's base name
func (f *SelectedFile) Name() string { return f.name }

// Size returns the file size in bytes as seen at validation time
func (f *SelectedFile) Size() int64 { return f.size }

// Open opens the underlying file for reading
func (f *SelectedFile) Open() (io.ReadCloser, error) { return f.handle.Open() }

// Validator applies the extension and size rules
type Validator struct {
	extension string
	maxSize   int64
	messages  config.MessageConfig
	log       *logger.Logger
}

// NewValidator creates a validator from configuration
func NewValidator(cfg *config.Config, log *logger.Logger) *Validator {
	if log == nil {
		log = logger.Discard()
	}
	return &Validator{
		extension: cfg.Intake.Extension,
		maxSize:   cfg.Intake.MaxFileSize,
		messages:  cfg.Messages,
		log:       log.WithComponent("intake"),
	}
}

// MaxSize returns the configured size cap in bytes
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks a file handle. A nil handle means nothing was selected.
// The extension check runs before the size check, so a wrong extension wins
// regardless of size. No I/O beyond what the handle already holds.
func (v *Validator) Validate(handle FileHandle) (*SelectedFile, error) {
	if handle == nil {
		return nil, &ValidationError{Kind: MissingFile, Message: v.messages.MissingFile}
	}

	name := handle.Name()
	size := handle.Size()

	if !strings.HasSuffix(name, v.extension) {
		v.log.DebugWithFields("rejected file", []logger.Field{logger.F("name", name), logger.F("reason", WrongExtension)})
		return nil, &ValidationError{Kind: WrongExtension, Name: name, Size: size, Message: v.messages.WrongExtension}
	}

	if size > v.maxSize {
		v.log.DebugWithFields("rejected file", []logger.Field{logger.F("name", name), logger.Bytes(size), logger.F("reason", TooLarge)})
		return nil, &ValidationError{Kind: TooLarge, Name: name, Size: size, Limit: v.maxSize, Message: v.messages.TooLarge}
	}

	return &SelectedFile{name: name, size: size, handle: handle}, nil
}

// ValidatePath resolves a path on disk and validates it. An empty, missing or
// non-regular path is reported as MissingFile.
func (v *Validator) ValidatePath(path string) (*SelectedFile, error) {
	handle, err := FromPath(path)
	if err != nil {
		v.log.Debug("no usable file at %q: %v", path, err)
		return v.Validate(nil)
	}
	return v.Validate(handle)
}

// diskFile is a FileHandle backed by a regular file
type diskFile struct {
	path string
	name string
	size int64
}

// FromPath stats path and returns a handle for it
func FromPath(path string) (FileHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", cleanPath)
	}

	return &diskFile{path: cleanPath, name: info.Name(), size: info.Size()}, nil
}

func (d *diskFile) Name() string { return d.name }

func (d *diskFile) Size() int64 { return d.size }

func (d *diskFile) Open() (io.ReadCloser, error) {
	// #nosec G304 - path was resolved by FromPath from an explicit user selection
	return os.Open(d.path)
}

// Selector is a picking surface whose current selection can be read and cleared
type Selector interface {
	Value() string
	SetValue(string)
}

// TakeSelection returns the current selection and clears the selector so the
// same file can be picked again later.
func TakeSelection(s Selector) string {
	value := strings.TrimSpace(s.Value())
	s.SetValue("")
	return value
}
