package llm

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/internal/common"
)

// ParseRecord turns the model's text answer into an InvestmentRecord.
// Only a JSON parse failure is an error; shape problems are normalized and
// schema mismatches are logged, never rejected.
func ParseRecord(content []byte, logger *zap.Logger) (InvestmentRecord, []byte, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !json.Valid(content) {
		return InvestmentRecord{}, nil, common.NewAppError(common.CodeExtract, "model answer is not JSON", common.ErrMalformed)
	}

	normalized, _, err := NormalizeRecordJSON(content, logger)
	if err != nil {
		return InvestmentRecord{}, nil, common.NewAppError(common.CodeExtract, "model answer is not a JSON object", err)
	}

	if vErr := ValidateRecordJSON(normalized); vErr != nil {
		logger.Warn("llm.extract.schema_mismatch", zap.Error(vErr))
	}

	var out InvestmentRecord
	if err := json.Unmarshal(normalized, &out); err != nil {
		return InvestmentRecord{}, normalized, fmt.Errorf("unmarshal record: %w", err)
	}
	return out, normalized, nil
}
