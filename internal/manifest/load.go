package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadMode controls how errors are handled during manifest loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the instruments compiled from a manifest directory.
type LoadResult struct {
	// Instruments maps canonical key to instrument, one entry per
	// declared instrument.
	Instruments map[string]Instrument

	// FileCount is the number of CUE files found.
	FileCount int
}

// LoadDir loads and compiles all instrument manifests in a directory.
//
// Manifests declare instruments under the top-level "instrument" struct:
//
//	instrument: bir: {
//		name:    "BIR"
//		archive: "https://archive.example.org/bir"
//		pattern: "BIR_{date}_{time}.yaml"
//	}
//
// In LoadModeFailFast the first error aborts; in LoadModeCollectAll the
// result holds every instrument that compiled and the error slice holds
// everything that did not.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{fmt.Errorf("manifest directory not found: %s", dir)}
	}
	if err != nil {
		return nil, []error{fmt.Errorf("accessing manifest directory: %w", err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("scanning manifest directory: %w", err)}
	}
	if len(cueFiles) == 0 {
		return nil, []error{fmt.Errorf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances(cueFiles, nil)
	if len(instances) == 0 {
		return nil, []error{fmt.Errorf("no CUE instances loaded from %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fmt.Errorf("loading CUE files: %w", inst.Err)}
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	result := &LoadResult{
		Instruments: make(map[string]Instrument),
		FileCount:   len(cueFiles),
	}
	var errs []error

	instrumentsVal := value.LookupPath(cue.ParsePath("instrument"))
	if !instrumentsVal.Exists() {
		return result, []error{fmt.Errorf("no top-level instrument struct in %s", dir)}
	}
	iter, iterErr := instrumentsVal.Fields()
	if iterErr != nil {
		return result, []error{fmt.Errorf("iterating instruments: %w", iterErr)}
	}
	for iter.Next() {
		compiled, compileErr := CompileInstrument(iter.Value())
		if compileErr != nil {
			errs = append(errs, compileErr)
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		if _, dup := result.Instruments[compiled.Key]; dup {
			errs = append(errs, &CompileError{
				Field:   iter.Selector().String(),
				Message: fmt.Sprintf("duplicate instrument key %q", compiled.Key),
				Pos:     iter.Value().Pos(),
			})
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Instruments[compiled.Key] = *compiled
	}

	return result, errs
}

// Validate compiles every manifest in dir and reports all errors.
// A nil error slice means the directory is valid.
func Validate(dir string) []error {
	_, errs := LoadDir(dir, LoadModeCollectAll)
	return errs
}

// findCUEFiles returns the .cue files directly under dir, sorted by name.
func findCUEFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if filepath.Ext(de.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, de.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
