package valid

import (
	"fmt"
	"net/http"
	"regexp"
)

var (
	// NET_STA_LOC_CHA, the location code may be empty.
	source = regexp.MustCompile(`^[A-Z0-9]{1,2}_[A-Z0-9]{1,5}_[A-Z0-9]{0,2}_[A-Z0-9]{3}$`)
)

// implements weft.Error
type Error struct {
	Code int
	Err  error
}

func (s Error) Error() string {
	if s.Err == nil {
		return "<nil>"
	}
	return s.Err.Error()
}

func (s Error) Status() int {
	return s.Code
}

// Source for validating stream source names e.g., NZ_WEL_20_HNZ
func Source(s string) error {
	if source.MatchString(s) {
		return nil
	}

	return Error{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid stream: %s", s)}
}
