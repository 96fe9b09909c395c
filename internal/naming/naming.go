// Package naming derives unique, date-stamped output filenames.
//
// A name has the shape <dir>/<stamp><Slug>.<ext>, where the slug is built from
// the first words of the document (or an explicit slug). When that name is
// taken, -1, -2, ... suffixes are probed until a free one is found.
//
// The existence check and the naming algorithm are kept apart: FirstFree is a
// pure function over an existence predicate, and Deriver wires it to an
// afero filesystem. No reservation is made; two writers racing on the same
// directory can receive the same name.
package naming

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/alnah/go-mdconvert/internal/dateutil"
	"github.com/alnah/go-mdconvert/internal/fileutil"
)

// DefaultMaxWords is the number of words kept in a content-derived slug.
const DefaultMaxWords = 6

// MaxSlugBytes bounds a slug so stamp, suffix and extension stay well under
// the 255-byte file name limit of common filesystems.
const MaxSlugBytes = 100

// Slug extracts alphanumeric words from source, keeps the first maxWords,
// title-cases each and concatenates them without separator.
// A negative maxWords means DefaultMaxWords; zero disables the slug.
// The result is cut to MaxSlugBytes on a rune boundary.
//
// Examples:
//   - Slug("# Title\n\nHello", 6) -> "TitleHello"
//   - Slug("big DATA pipeline", 6) -> "BigDataPipeline"
//   - Slug("---", 6) -> ""
func Slug(source string, maxWords int) string {
	if maxWords < 0 {
		maxWords = DefaultMaxWords
	}
	if maxWords == 0 {
		return ""
	}

	words := strings.FieldsFunc(source, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) > maxWords {
		words = words[:maxWords]
	}

	var b strings.Builder
	for _, w := range words {
		b.WriteString(titleCase(w))
		if b.Len() >= MaxSlugBytes {
			break
		}
	}
	return truncate(b.String(), MaxSlugBytes)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func titleCase(word string) string {
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// FirstFree returns dir/base.ext if exists reports it free, otherwise the
// first dir/base-N.ext (N = 1, 2, ...) that is free. A stem only counts as
// free when the same stem is also free for every sibling extension, so files
// written next to the primary one never clobber or impersonate older files.
func FirstFree(exists func(string) bool, dir, base, ext string, siblings ...string) string {
	exts := append([]string{ext}, siblings...)
	taken := func(stem string) bool {
		for _, e := range exts {
			if exists(filepath.Join(dir, stem+"."+strings.TrimPrefix(e, "."))) {
				return true
			}
		}
		return false
	}

	stem := base
	for n := 1; taken(stem); n++ {
		stem = base + "-" + strconv.Itoa(n)
	}
	return filepath.Join(dir, stem+"."+strings.TrimPrefix(ext, "."))
}

// Deriver produces output paths that do not exist at call time.
type Deriver struct {
	Fs         afero.Fs
	Now        func() time.Time
	DateFormat string // dateutil format or preset; empty = YYYYMMDD
	MaxWords   int    // words kept from content; negative = DefaultMaxWords
}

// New returns a Deriver on fs using the local clock and default settings.
func New(fs afero.Fs) *Deriver {
	return &Deriver{Fs: fs, Now: time.Now, MaxWords: DefaultMaxWords}
}

// Base returns the collision-unaware file stem: <stamp><Slug>.
// An explicit slug takes precedence over content; it is normalized the same
// way so user input cannot smuggle separators into the name.
func (d *Deriver) Base(slug, content string) (string, error) {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	stamp, err := dateutil.Stamp(d.DateFormat, now())
	if err != nil {
		return "", err
	}

	source := content
	if strings.TrimSpace(slug) != "" {
		source = slug
	}
	return stamp + Slug(source, d.MaxWords), nil
}

// Derive returns a path under dir with the given extension that does not
// exist on the Deriver's filesystem. Sibling extensions (the files a caller
// will write next to it, such as a compiled .pdf) must be free for the same
// stem too.
func (d *Deriver) Derive(dir, ext, slug, content string, siblings ...string) (string, error) {
	for _, e := range append([]string{ext}, siblings...) {
		if err := fileutil.ValidateExtension(e); err != nil {
			return "", fmt.Errorf("deriving filename: %w", err)
		}
	}
	base, err := d.Base(slug, content)
	if err != nil {
		return "", fmt.Errorf("deriving filename: %w", err)
	}
	exists := func(p string) bool { return fileutil.PathExists(d.Fs, p) }
	return FirstFree(exists, dir, base, ext, siblings...), nil
}
