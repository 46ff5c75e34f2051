package llm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/portfolio-grader/internal/common"
	"github.com/joseph-ayodele/portfolio-grader/internal/llm"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestNormalizeRecordJSON_CompleteRecordUnchanged(t *testing.T) {
	in := `{"name":"AAPL","type":"stock","amount":"1500","purchaseDate":"2023-01-10","quantity":"10","ticker":"AAPL","riskScore":4,"grade":"B+","roiEstimate":"12%"}`
	out, changed, err := llm.NormalizeRecordJSON([]byte(in), nil)
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.JSONEq(t, in, string(out))
}

func TestNormalizeRecordJSON_FillsUnknown(t *testing.T) {
	out, changed, err := llm.NormalizeRecordJSON([]byte(`{"name":"Vanguard 500","ticker":null,"amount":""}`), nil)
	require.NoError(t, err)
	m := decode(t, out)

	assert.Equal(t, "Vanguard 500", m["name"])
	for _, k := range []string{"type", "amount", "purchaseDate", "quantity", "ticker", "riskScore", "grade", "roiEstimate"} {
		assert.Equal(t, "unknown", m[k], k)
	}
	assert.Contains(t, changed, "amount(empty)")
	assert.Contains(t, changed, "ticker(missing)")
}

func TestNormalizeRecordJSON_Coercions(t *testing.T) {
	in := `{"name":" Tesla ","type":"stock","amount":1500.5,"quantity":3,"symbol":"TSLA",
		"risk_score":"7","grade":"b plus","roi":"8.5","purchaseDate":"2024-02-01","note":"extra"}`
	out, changed, err := llm.NormalizeRecordJSON([]byte(in), nil)
	require.NoError(t, err)
	m := decode(t, out)

	assert.Equal(t, "Tesla", m["name"])
	assert.Equal(t, "1500.5", m["amount"])
	assert.Equal(t, "3", m["quantity"])
	assert.Equal(t, "TSLA", m["ticker"])
	assert.Equal(t, float64(7), m["riskScore"])
	assert.Equal(t, "B+", m["grade"])
	assert.Equal(t, "8.5%", m["roiEstimate"])
	assert.NotContains(t, m, "note")
	assert.NotContains(t, m, "symbol")
	assert.Contains(t, changed, "note(unknown)")
	assert.Contains(t, changed, "symbol->ticker")
}

func TestNormalizeRecordJSON_RiskScoreText(t *testing.T) {
	out, _, err := llm.NormalizeRecordJSON([]byte(`{"riskScore":"moderate"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "unknown", decode(t, out)["riskScore"])

	out, _, err = llm.NormalizeRecordJSON([]byte(`{"riskScore":6.6}`), nil)
	require.NoError(t, err)
	assert.Equal(t, float64(7), decode(t, out)["riskScore"])
}

func TestNormalizeRecordJSON_RiskScoreOutOfRange(t *testing.T) {
	for _, in := range []string{
		`{"riskScore":"NaN"}`,
		`{"riskScore":"Inf"}`,
		`{"riskScore":"-infinity"}`,
		`{"riskScore":"1e300"}`,
		`{"riskScore":1e300}`,
		`{"riskScore":0}`,
		`{"riskScore":11}`,
		`{"riskScore":"-3"}`,
	} {
		out, changed, err := llm.NormalizeRecordJSON([]byte(in), nil)
		require.NoError(t, err, in)
		assert.Equal(t, "unknown", decode(t, out)["riskScore"], in)
		assert.Contains(t, changed, "riskScore(range)", in)
	}

	out, _, err := llm.NormalizeRecordJSON([]byte(`{"riskScore":"10"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, float64(10), decode(t, out)["riskScore"])
}

func TestParseRecord_NonFiniteRiskScoreIsUnknown(t *testing.T) {
	for _, score := range []string{`"NaN"`, `"1e300"`} {
		in := `{"name":"AAPL","type":"stock","amount":"1500","purchaseDate":"2023-01-10","quantity":"10","ticker":"AAPL","riskScore":` + score + `,"grade":"B+","roiEstimate":"12%"}`
		rec, raw, err := llm.ParseRecord([]byte(in), nil)
		require.NoError(t, err, score)
		assert.False(t, rec.RiskScore.Known, score)
		assert.Equal(t, "unknown", decode(t, raw)["riskScore"], score)
	}
}

func TestNormalizeRecordJSON_RejectsNonObjects(t *testing.T) {
	_, _, err := llm.NormalizeRecordJSON([]byte(`null`), nil)
	assert.ErrorIs(t, err, common.ErrMalformed)

	_, _, err = llm.NormalizeRecordJSON([]byte(`[1,2]`), nil)
	assert.Error(t, err)

	_, _, err = llm.NormalizeRecordJSON([]byte(`not json`), nil)
	assert.Error(t, err)
}
