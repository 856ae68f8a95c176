package attributes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/geodeform/halfedge"
	"github.com/notargets/geodeform/types"
)

// FileNames lists the attribute files looked up in a model directory, in order
var FileNames = []string{"attributes.yaml", "attributes.yml", "attributes.json", "attributes.py"}

// FindFile returns the first attribute file present in dir
func FindFile(dir string) (filename string, err error) {
	for _, name := range FileNames {
		filename = filepath.Join(dir, name)
		if info, statErr := os.Stat(filename); statErr == nil && !info.IsDir() {
			return
		}
	}
	return "", fmt.Errorf("no attribute file (%s) in %s: %w",
		strings.Join(FileNames, ", "), dir, types.ErrInvalidArgument)
}

/*
FileSource reads precomputed labels. YAML and JSON files hold the keys
horizon_id, is_fault and optionally fault_opposite. A .py file is the legacy
output of the precompute script, python assignments of list literals:

	horizon_id = [-1, 0, 0, -1]
	is_fault = [False, True, False, False]

When fault_opposite is missing the fault sides are paired by position.
*/
type FileSource struct {
	Path             string
	SquaredTolerance float64 // for PairFaults, DefaultSquaredTolerance when zero
}

func (fs FileSource) Label(m *halfedge.Mesh) (s *Set, err error) {
	var data []byte
	if data, err = os.ReadFile(fs.Path); err != nil {
		return
	}
	if s, err = ParseSet(data, strings.ToLower(filepath.Ext(fs.Path)) == ".py"); err != nil {
		return nil, fmt.Errorf("%s: %w", fs.Path, err)
	}
	derivePairs := s.FaultOpposite == nil
	if derivePairs {
		s.FaultOpposite = make([]int, len(s.IsFault))
		for c := range s.FaultOpposite {
			s.FaultOpposite[c] = halfedge.NoCorner
		}
	}
	if err = s.Validate(m.NCorners()); err != nil {
		return nil, fmt.Errorf("%s: %w", fs.Path, err)
	}
	if derivePairs {
		tol2 := fs.SquaredTolerance
		if tol2 <= 0 {
			tol2 = DefaultSquaredTolerance
		}
		PairFaults(m, s, tol2)
	}
	return
}

var (
	pyAssign = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z_][A-Za-z0-9_]*)[ \t]*=[ \t]*`)
	pyNone   = regexp.MustCompile(`\bNone\b`)
)

// ParseSet decodes an attribute file body. YAML accepts the python True/False
// literals as booleans, so python input only needs its assignments turned
// into keys and None into the no-corner sentinel.
func ParseSet(data []byte, python bool) (s *Set, err error) {
	if python {
		data = pyAssign.ReplaceAll(data, []byte("$1: "))
		data = pyNone.ReplaceAll(data, []byte("-1"))
	}
	s = &Set{}
	if err = yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%v: %w", err, types.ErrInvalidAttribute)
	}
	return
}

// WriteFile stores a set as YAML
func WriteFile(filename string, s *Set) (err error) {
	var data []byte
	if data, err = yaml.Marshal(s); err != nil {
		return
	}
	return os.WriteFile(filename, data, 0644)
}
