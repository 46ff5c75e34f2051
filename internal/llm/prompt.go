package llm

import (
	"strings"

	"github.com/joseph-ayodele/portfolio-grader/constants"
)

// SystemPrompt is the extraction contract sent with every request. Changing it changes
// what the model returns, so tests pin its required clauses.
const SystemPrompt = `You are a financial data extraction assistant. ` +
	`You will receive a screenshot of an investment account or brokerage position. ` +
	`Return ONLY a single JSON object with exactly these fields: ` +
	`"name" (the investment or security name), ` +
	`"type" (stock, etf, mutual fund, bond, crypto, option, cash or other), ` +
	`"amount" (total amount invested or current value as shown, digits only, no currency symbol), ` +
	`"purchaseDate" (ISO-8601 date YYYY-MM-DD), ` +
	`"quantity" (number of shares or units), ` +
	`"ticker" (the ticker symbol), ` +
	`"riskScore" (an integer from 1 to 10 you derive, 1 = lowest risk), ` +
	`"grade" (an overall letter grade you derive, one of: ` + gradeList + `), ` +
	`"roiEstimate" (estimated return on investment as a percentage string such as "12%"). ` +
	`If a field is not visible or cannot be derived, set it to "unknown". ` +
	`Never omit a field and never output null.`

// UserInstruction accompanies the image in the user turn.
const UserInstruction = "Extract the investment details from this screenshot and grade the investment. " +
	"Respond with the JSON object only."

const gradeList = "A+, A, A-, B+, B, B-, C+, C, C-, D+, D, D-, F"

// RecordFields lists the InvestmentRecord JSON keys in prompt order.
var RecordFields = []string{
	"name", "type", "amount", "purchaseDate", "quantity", "ticker",
	"riskScore", "grade", "roiEstimate",
}

// BuildUserPrompt packages the fixed instruction with an optional filename hint.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString(UserInstruction)
	if filename := strings.TrimSpace(req.FilenameHint); filename != "" {
		b.WriteString("\nFilename: ")
		b.WriteString(filename)
	}
	return b.String()
}

// BuildInvestmentJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Every field is required; "unknown" is accepted everywhere.
func BuildInvestmentJSONSchema() map[string]any {
	unknown := map[string]any{"const": constants.UnknownValue}
	anyText := map[string]any{"type": "string", "minLength": 1}

	props := map[string]any{
		"name":         anyText,
		"type":         anyText,
		"amount":       oneOf(decimalProp(), unknown),
		"purchaseDate": oneOf(map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}, unknown),
		"quantity":     oneOf(decimalProp(), unknown),
		"ticker":       anyText,
		"riskScore":    oneOf(map[string]any{"type": "integer", "minimum": 1, "maximum": 10}, unknown),
		"grade":        oneOf(map[string]any{"type": "string", "enum": constants.GradesAsStringSlice()}, unknown),
		"roiEstimate":  oneOf(map[string]any{"type": "string", "pattern": `^[-+]?\d+(\.\d+)?\s?%$`}, unknown),
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             RecordFields,
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^-?\d+(\.\d+)?$`,
	}
}

func oneOf(alts ...map[string]any) map[string]any {
	items := make([]any, 0, len(alts))
	for _, a := range alts {
		items = append(items, a)
	}
	return map[string]any{"anyOf": items}
}
