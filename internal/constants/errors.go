package constants

import "errors"

// CLI configuration errors.
var (
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrInvalidQueryParam  = errors.New("query parameter must be in key=value form")
	ErrInvalidBody        = errors.New("request body is not valid JSON")
	ErrUnknownOutput      = errors.New("unknown output format")
	ErrUnknownLogFormat   = errors.New("unknown log format")
	ErrPasswordNotPresent = errors.New("password is required (flag, PAGEDREST_PASSWORD, or interactive prompt)")
)
