// Package directory holds the static department → recipient routing table.
// It is loaded once at startup from configuration and read-only afterwards.
package directory

import (
	"strings"

	"github.com/svsu-dev/samadhan/internal/config"
	"github.com/svsu-dev/samadhan/internal/domain"
)

// RecipientEntry is the set of addresses a department's grievances go to.
type RecipientEntry struct {
	To  []string `json:"to"`
	CC  []string `json:"cc"`
	BCC []string `json:"bcc"`
}

// Directory maps department names to recipient entries. Lookup misses yield
// the default entry, never an error: an unknown department at submission time
// is routed, not rejected.
type Directory struct {
	entries      map[string]RecipientEntry
	defaultEntry RecipientEntry
}

// FromConfig builds the directory from the loaded configuration. When no
// recipients are configured, every known department gets a conventional
// address derived from its name (e.g. Library → library@svsu.ac.in).
func FromConfig(cfg config.DirectoryConfig, emailSuffix string) *Directory {
	d := &Directory{
		entries:      make(map[string]RecipientEntry),
		defaultEntry: RecipientEntry{To: []string{cfg.Default}},
	}

	for name, rc := range cfg.Recipients {
		d.entries[normalize(name)] = RecipientEntry{To: rc.To, CC: rc.CC, BCC: rc.BCC}
	}

	if len(cfg.Recipients) == 0 {
		for _, dept := range domain.KnownDepartments() {
			addr := conventionalAddress(dept, emailSuffix)
			d.entries[normalize(string(dept))] = RecipientEntry{To: []string{addr}}
		}
	}

	return d
}

// Lookup returns the recipient entry for a department. Unknown departments
// fall back to the default entry.
func (d *Directory) Lookup(dept domain.Department) RecipientEntry {
	if e, ok := d.entries[normalize(string(dept))]; ok {
		return e
	}
	return d.defaultEntry
}

// Default returns the fallback entry used for unrecognized departments.
func (d *Directory) Default() RecipientEntry {
	return d.defaultEntry
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// conventionalAddress turns "Student Welfare" + "@svsu.ac.in" into
// "studentwelfare@svsu.ac.in".
func conventionalAddress(dept domain.Department, suffix string) string {
	local := strings.ToLower(string(dept))
	local = strings.ReplaceAll(local, " ", "")
	return local + suffix
}
