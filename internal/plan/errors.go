package plan

import (
	"errors"
	"fmt"
	"reflect"

	"object-mapper/internal/common"
)

var (
	ErrTargetNotConstructable = errors.New("target is not constructable")
	ErrConversionUnsupported  = errors.New("conversion unsupported")
)

// MappingError locates a failure inside a mapping. Errors returned by configured
// callbacks are never wrapped.
type MappingError struct {
	SourceType reflect.Type
	TargetType reflect.Type
	Path       string
	Err        error
}

func (e *MappingError) Error() string {
	pair := common.TypeName(e.SourceType) + " -> " + common.TypeName(e.TargetType)
	if e.Path == "" {
		return fmt.Sprintf("mapping %s: %v", pair, e.Err)
	}

	return fmt.Sprintf("mapping %s at %s: %v", pair, e.Path, e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

func mappingError(source, target reflect.Type, path string, err error) error {
	var me *MappingError
	if errors.As(err, &me) {
		return err
	}

	return &MappingError{SourceType: source, TargetType: target, Path: path, Err: err}
}
