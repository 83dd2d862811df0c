package xs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads every *.dat table file under dir into a Library.
//
// The format is one isotope per file:
//
//	# isotope Pb208
//	channel 2
//	1.0e-5  11.26
//	2.0e7   4.42
//	channel 102
//	1.0e-5  0.70
//	2.0e7   0.003
//
// Sections are "channel MT" headers followed by whitespace-separated
// "energy xs" pairs (eV, barns), energies ascending. Lines starting
// with '#' other than the isotope header are comments.
func Load(dir string) (*Library, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.dat"))
	if err != nil {
		return nil, fmt.Errorf("xs: bad table directory %q: %w", dir, err)
	}
	lib := NewLibrary()
	for _, fname := range matches {
		if err := lib.loadFile(fname); err != nil {
			return nil, err
		}
	}
	if len(lib.isotopes) == 0 {
		return nil, fmt.Errorf("%w: no table files under %q", ErrConfig, dir)
	}
	return lib, nil
}

func (l *Library) loadFile(fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("xs: could not open table file: %w", err)
	}
	defer f.Close()

	var (
		isotope string
		ch      Channel
		es, vs  []float64
	)
	flush := func() error {
		if len(es) == 0 {
			return nil
		}
		t, err := NewTable(es, vs)
		if err != nil {
			return fmt.Errorf("%s: channel %d: %w", fname, ch, err)
		}
		l.Add(isotope, ch, t)
		es, vs = nil, nil
		return nil
	}

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		txt := strings.TrimSpace(sc.Text())
		switch {
		case txt == "":
			continue
		case strings.HasPrefix(txt, "# isotope"):
			isotope = strings.TrimSpace(strings.TrimPrefix(txt, "# isotope"))
			if isotope == "" {
				return fmt.Errorf("%s:%d: empty isotope header", fname, line)
			}
		case strings.HasPrefix(txt, "#"):
			continue
		case strings.HasPrefix(txt, "channel"):
			if err := flush(); err != nil {
				return err
			}
			mt := 0
			if _, err := fmt.Sscanf(txt, "channel %d", &mt); err != nil {
				return fmt.Errorf("%s:%d: bad channel line %q: %v", fname, line, txt, err)
			}
			ch = Channel(mt)
		default:
			if isotope == "" {
				return fmt.Errorf("%s:%d: table data before \"# isotope\" header", fname, line)
			}
			if ch == 0 {
				return fmt.Errorf("%s:%d: table data before \"channel\" header", fname, line)
			}
			var e, v float64
			if _, err := fmt.Sscanf(txt, "%g %g", &e, &v); err != nil {
				return fmt.Errorf("%s:%d: bad table line %q: %v", fname, line, txt, err)
			}
			es = append(es, e)
			vs = append(vs, v)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("xs: reading %s: %w", fname, err)
	}
	return flush()
}
