package cli

import (
	"errors"

	"github.com/galvinograd/purple-titanium/internal/config"
	"github.com/galvinograd/purple-titanium/internal/pterrors"
)

// Exit codes, the direct analogue of the teacher's Sprint-10 exit-code
// table, remapped onto Purple Titanium's own error taxonomy.
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitStorageError    = 2
	ExitExecutionError  = 3
)

// ExitCode classifies err into one of the codes above so main can set the
// process exit status deterministically.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return ExitValidationError
	}
	var storageErr *pterrors.StorageError
	var corruptErr *pterrors.CacheCorruptionError
	if errors.As(err, &storageErr) || errors.As(err, &corruptErr) {
		return ExitStorageError
	}
	return ExitExecutionError
}
