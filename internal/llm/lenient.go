package llm

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/constants"
	"github.com/joseph-ayodele/portfolio-grader/internal/common"
)

var stringFields = []string{"name", "type", "amount", "purchaseDate", "quantity", "ticker", "grade", "roiEstimate"}

// NormalizeRecordJSON makes a parsed model answer fit InvestmentRecord without rejecting it:
//   - renames known synonyms (symbol -> ticker, roi -> roiEstimate)
//   - coerces numbers to strings for text fields, numeric strings to integers for riskScore
//   - turns a riskScore that is not a finite number in 1..10 into "unknown"
//   - fills null/empty/missing fields with "unknown"
//   - canonicalizes the grade and appends "%" to a bare numeric roiEstimate
//   - removes unknown keys
//
// It fails only when raw is not a JSON object.
func NormalizeRecordJSON(raw []byte, logger *zap.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("normalize: decode: %w", err)
	}
	if m == nil {
		return nil, nil, fmt.Errorf("normalize: %w: not a JSON object", common.ErrMalformed)
	}

	changed := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			changed = append(changed, from+"->"+to)
		}
	}

	// 1) rename synonyms
	renamed("symbol", "ticker")
	renamed("roi", "roiEstimate")
	renamed("purchase_date", "purchaseDate")
	renamed("risk_score", "riskScore")
	renamed("roi_estimate", "roiEstimate")

	// 2) text fields: coerce and fill
	for _, k := range stringFields {
		switch t := m[k].(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
				m[k] = constants.UnknownValue
				changed = append(changed, k+"(empty)")
			} else {
				m[k] = s
			}
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
			changed = append(changed, k+"(number)")
		case nil:
			m[k] = constants.UnknownValue
			changed = append(changed, k+"(missing)")
		default:
			m[k] = constants.UnknownValue
			changed = append(changed, k+"(type)")
		}
	}

	// 3) riskScore: integer 1..10 or "unknown"
	switch t := m["riskScore"].(type) {
	case float64:
		if rs := riskScoreFromFloat(t); !rs.Known {
			m["riskScore"] = constants.UnknownValue
			changed = append(changed, "riskScore(range)")
		} else if float64(rs.Value) != t {
			m["riskScore"] = rs.Value
			changed = append(changed, "riskScore(rounded)")
		}
	case string:
		s := strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if rs := riskScoreFromFloat(f); rs.Known {
				m["riskScore"] = rs.Value
				changed = append(changed, "riskScore(string)")
			} else {
				m["riskScore"] = constants.UnknownValue
				changed = append(changed, "riskScore(range)")
			}
		} else {
			if t != constants.UnknownValue {
				changed = append(changed, "riskScore(text)")
			}
			m["riskScore"] = constants.UnknownValue
		}
	default:
		m["riskScore"] = constants.UnknownValue
		changed = append(changed, "riskScore(missing)")
	}

	// 4) grade vocabulary
	if g, ok := m["grade"].(string); ok && g != constants.UnknownValue {
		if canon, known := constants.CanonicalizeGrade(g); known && string(canon) != g {
			m["grade"] = string(canon)
			changed = append(changed, "grade(canonical)")
		}
	}

	// 5) roiEstimate is a percentage
	if roi, ok := m["roiEstimate"].(string); ok && roi != constants.UnknownValue {
		if _, err := strconv.ParseFloat(roi, 64); err == nil {
			m["roiEstimate"] = roi + "%"
			changed = append(changed, "roiEstimate(percent)")
		}
	}

	// 6) remove unknown keys
	allowed := make(map[string]struct{}, len(RecordFields))
	for _, k := range RecordFields {
		allowed[k] = struct{}{}
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("normalize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Warn("llm.extract.normalize", zap.Strings("changed", changed))
	}
	return out, changed, nil
}
