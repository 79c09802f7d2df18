package stream

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadText reads white space separated sample values from r, calling fn for each.
// Lines starting with # are ignored.  Reading stops at the first error from fn.
func ReadText(r io.Reader, fn func(float64) error) error {
	scanner := bufio.NewScanner(r)

	var line int
	for scanner.Scan() {
		line++

		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}

		for _, f := range strings.Fields(s) {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("line %d: invalid sample %q", line, f)
			}

			if err := fn(v); err != nil {
				return err
			}
		}
	}

	return scanner.Err()
}
