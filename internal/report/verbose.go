package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"kachef/internal/admission"
	"kachef/internal/rawstore"
)

// Verbose writes the admission listing of a build. Write errors are kept and
// reported by Err; later events are dropped once one occurs.
type Verbose struct {
	mu    sync.Mutex
	w     io.Writer
	lines int
	err   error
}

// NewVerbose returns a recorder writing to w.
func NewVerbose(w io.Writer) *Verbose {
	return &Verbose{w: w}
}

// Include records an admitted record.
func (v *Verbose) Include(depth int, kind rawstore.Kind, slug string) {
	v.write(Line(depth, "INCLUDE", kind, slug, admission.Admitted))
}

// Exclude records a rejected record with its reason.
func (v *Verbose) Exclude(depth int, kind rawstore.Kind, slug string, reason admission.Reason) {
	v.write(Line(depth, "EXCLUDE", kind, slug, reason))
}

// Lines returns the number of lines written.
func (v *Verbose) Lines() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lines
}

// Err returns the first write error.
func (v *Verbose) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *Verbose) write(line string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil || v.w == nil {
		return
	}
	if _, err := io.WriteString(v.w, line+"\n"); err != nil {
		v.err = fmt.Errorf("write verbose report: %w", err)
		return
	}
	v.lines++
}

// Line formats one listing entry.
func Line(depth int, action string, kind rawstore.Kind, slug string, reason admission.Reason) string {
	line := strings.Repeat("  ", depth) + action + " " + string(kind) + " " + slug
	if !reason.OK() {
		line += " [" + reason.String() + "]"
	}
	return line
}
