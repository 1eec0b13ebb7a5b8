package visitors_validation

import (
	visitors_core "visitorlogs/internal/features/visitors/core"
	"visitorlogs/internal/util/logger"
)

var batchValidator = NewBatchValidator(visitors_core.Now, logger.GetLogger())

func GetBatchValidator() *BatchValidator {
	return batchValidator
}
