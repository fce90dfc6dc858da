// Package converters wires format converter variants behind the
// ConverterRegistry port. Selection is by file extension; adding a
// format means registering one more variant.
package converters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
	"github.com/inkwell-sync/inkwell/internal/converters/office"
	"github.com/inkwell-sync/inkwell/internal/converters/pdf"
)

// Ensure Registry implements the interface.
var _ driven.ConverterRegistry = (*Registry)(nil)

// Registry selects a converter variant by file extension.
type Registry struct {
	byExt map[string]driven.Converter
}

// NewRegistry creates a registry from the given converters.
// Later converters win on extension collisions.
func NewRegistry(convs ...driven.Converter) *Registry {
	byExt := make(map[string]driven.Converter)
	for _, conv := range convs {
		for _, ext := range conv.SupportedExtensions() {
			byExt[strings.ToLower(ext)] = conv
		}
	}
	return &Registry{byExt: byExt}
}

// Defaults returns a registry with all built-in converters.
func Defaults() *Registry {
	return NewRegistry(office.New(), pdf.New())
}

// ForFile returns the converter handling the file's extension.
func (r *Registry) ForFile(fileName string) (driven.Converter, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	conv, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
	return conv, nil
}
