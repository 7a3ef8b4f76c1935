package pcerror

import (
	"errors"
	"fmt"
)

const (
	POOLCAT_UNEXPECTED = "PCATU"
	POOLCAT_BAD_CONFIG = "PCATC"
	POOLCAT_POOL       = "PCATP"
)

var existingErrorCodeMap = map[string]string{
	POOLCAT_BAD_CONFIG: "invalid configuration",
	POOLCAT_POOL:       "pool recreation error",
}

func GetMessageByCode(errorCode string) string {
	rep, ok := existingErrorCodeMap[errorCode]
	if ok {
		return rep
	}
	return "Unexpected error"
}

var _ error = &PoolcatError{}

type PoolcatError struct {
	Err error

	ErrorCode string
}

func New(errorCode string, errorMsg string) *PoolcatError {
	return &PoolcatError{
		Err:       errors.New(errorMsg),
		ErrorCode: errorCode,
	}
}

// BadConfig constructs the unified bad-configuration error. The formatted
// cause is kept for logs; callers are expected to branch on the code only.
func BadConfig(format string, args ...any) *PoolcatError {
	return &PoolcatError{
		Err:       fmt.Errorf(format, args...),
		ErrorCode: POOLCAT_BAD_CONFIG,
	}
}

func (er *PoolcatError) Error() string {
	return fmt.Sprintf("Code: %s. Name: %s. Description: %s.",
		er.ErrorCode, GetMessageByCode(er.ErrorCode), er.Err)
}

func (er *PoolcatError) Unwrap() error {
	return er.Err
}

// IsBadConfig reports whether err is the bad-configuration kind.
func IsBadConfig(err error) bool {
	var pe *PoolcatError
	return errors.As(err, &pe) && pe.ErrorCode == POOLCAT_BAD_CONFIG
}
