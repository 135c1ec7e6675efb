package constants

import "github.com/go-playground/validator/v10"

type ContextKey string

const (
	PoolKey    ContextKey = "pool"
	TxKey      ContextKey = "tx"
	LoggerKey  ContextKey = "logger"
	ParamsKey  ContextKey = "params"
	SubjectKey ContextKey = "subject"
)

// Validate is the process-wide validator used by request DTOs.
var Validate = validator.New(validator.WithRequiredStructEnabled())
