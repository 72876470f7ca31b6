// Package reflist reads the plain text list of image references a batch runs over
package reflist

import (
	"bufio"
	"io"
	"os"
	"strings"

	perr "maskstat/internal/platform/errors"
)

const maxLine = 1 << 20

// ReadFile opens path and parses it with Read
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "open reference list %s", path)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read returns the first whitespace separated token of every non blank line,
// in file order. Lines starting with '#' are comments.
func Read(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	var refs []string
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		refs = append(refs, fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read reference list")
	}
	return refs, nil
}
