package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Instrument describes one data source an archive can serve.
type Instrument struct {
	// Key is the canonical identifier (see Key).
	Key string `json:"key"`

	// Name is the display name as declared in the manifest.
	Name string `json:"name"`

	// Archive is the base location (directory or URL) relative catalog
	// locations resolve against.
	Archive string `json:"archive"`

	// Pattern is an optional filename pattern documenting how archive
	// files are laid out.
	Pattern string `json:"pattern,omitempty"`

	// Description is optional human-oriented context.
	Description string `json:"description,omitempty"`
}

// CompileInstrument parses a CUE value into an Instrument.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the instrument struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`instrument: bir: { ... }`)
//	inst, err := CompileInstrument(v.LookupPath(cue.ParsePath("instrument.bir")))
func CompileInstrument(v cue.Value) (*Instrument, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	inst := &Instrument{}

	// The instrument key comes from the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		inst.Key = Key(labels[len(labels)-1].String())
	}

	name, err := requiredString(v, "name")
	if err != nil {
		return nil, err
	}
	inst.Name = name
	if inst.Key == "" {
		inst.Key = Key(name)
	}

	archive, err := requiredString(v, "archive")
	if err != nil {
		return nil, err
	}
	inst.Archive = archive

	if inst.Pattern, err = optionalString(v, "pattern"); err != nil {
		return nil, err
	}
	if inst.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}

	return inst, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a string", field),
			Pos:     fv.Pos(),
		}
	}
	if s == "" {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must not be empty", field),
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a string", field),
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// CompileError represents a manifest compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
