package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/portfolio-grader/constants"
)

// InvestmentRecord is the normalized shape we want from the LLM.
// Every string field holds constants.UnknownValue when the screenshot didn't show it.
type InvestmentRecord struct {
	Name         string    `json:"name"`
	Type         string    `json:"type"`         // stock, etf, bond, crypto, fund...
	Amount       string    `json:"amount"`       // invested amount as shown
	PurchaseDate string    `json:"purchaseDate"` // YYYY-MM-DD when readable
	Quantity     string    `json:"quantity"`
	Ticker       string    `json:"ticker"`
	RiskScore    RiskScore `json:"riskScore"`   // 1..10
	Grade        string    `json:"grade"`       // constants.Grade vocabulary
	ROIEstimate  string    `json:"roiEstimate"` // percentage, e.g. "12%"
}

// RiskScore is an integer 1..10, or unknown when the model could not derive one.
// It encodes as a JSON number when known and as "unknown" otherwise.
type RiskScore struct {
	Value int
	Known bool
}

// Bounds of a known RiskScore.
const (
	RiskScoreMin = 1
	RiskScoreMax = 10
)

func NewRiskScore(v int) RiskScore {
	return RiskScore{Value: v, Known: true}
}

func (r RiskScore) MarshalJSON() ([]byte, error) {
	if !r.Known {
		return json.Marshal(constants.UnknownValue)
	}
	return []byte(strconv.Itoa(r.Value)), nil
}

func (r *RiskScore) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = RiskScore{}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		f, err := n.Float64()
		if err != nil {
			*r = RiskScore{}
			return nil
		}
		*r = riskScoreFromFloat(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		*r = riskScoreFromFloat(f)
		return nil
	}
	*r = RiskScore{}
	return nil
}

// riskScoreFromFloat rounds f to the nearest integer. NaN, infinities and
// anything outside RiskScoreMin..RiskScoreMax are unknown.
func riskScoreFromFloat(f float64) RiskScore {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return RiskScore{}
	}
	v := math.Round(f)
	if v < RiskScoreMin || v > RiskScoreMax {
		return RiskScore{}
	}
	return NewRiskScore(int(v))
}

func (r RiskScore) String() string {
	if !r.Known {
		return constants.UnknownValue
	}
	return strconv.Itoa(r.Value)
}

// ExtractRequest carries one staged screenshot to the extractor.
type ExtractRequest struct {
	ImageData    []byte
	MimeType     string // declared by the uploader; used verbatim in the data URI
	FilenameHint string
	FilePath     string // staged temp copy; informational
}

// FieldExtractor is the interface the analyze service depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (InvestmentRecord, []byte /*rawJSON*/, error)
}
