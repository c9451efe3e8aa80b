package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// requiredFields are the response fields every cheque extraction must carry.
// Presence is checked on the decoded map so that false booleans still count
// as present.
var requiredFields = []string{
	"date",
	"payee",
	"key_identifier",
	"payer",
	"currency",
	"is_trailer_fee",
	"is_management_fee",
}

// chequeSchema constrains field types and the currency/next-step enums. Only
// strict validation uses it; the lenient path checks presence alone.
const chequeSchema = `{
  "type": "object",
  "properties": {
    "bank_name": { "type": "string" },
    "date": { "type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$" },
    "payee": { "type": "string", "minLength": 1 },
    "payer": { "type": "string", "minLength": 1 },
    "amount_numerical": { "type": ["string", "number"] },
    "amount_words": { "type": "string" },
    "cheque_number": { "type": ["string", "number"] },
    "key_identifier": { "type": ["string", "number"], "pattern": "^\\d{6}$" },
    "currency": { "enum": ["CNY", "USD", "HKD", "EUR", "GBP"] },
    "remarks": { "type": "string" },
    "is_trailer_fee": { "type": "boolean" },
    "is_management_fee": { "type": "boolean" },
    "next_step": { "enum": ["Process Payment", "Flag for Manual Review"] }
  }
}`

var compiledChequeSchema = jsonschema.MustCompileString("cheque.json", chequeSchema)

// Validator parses raw model output into an ExtractedRecord. Strict mode
// additionally enforces the cheque schema (field types, currency enum);
// lenient mode reproduces the historical presence-only behaviour.
type Validator struct {
	Strict bool
}

// NewValidator returns a validator with the given strictness.
func NewValidator(strict bool) *Validator {
	return &Validator{Strict: strict}
}

// Parse strips markdown fences, decodes the JSON object, verifies required
// fields, and builds the typed record. Unknown fields are preserved in
// Record.Raw but not validated.
func (v *Validator) Parse(raw string) (*ExtractedRecord, error) {
	clean := cleanModelJSON(raw)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &decoded); err != nil {
		return nil, &MalformedResponseError{Err: err, Raw: truncateRaw(raw)}
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := decoded[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteResponseError{Missing: missing}
	}

	if v.Strict {
		if err := compiledChequeSchema.Validate(decoded); err != nil {
			return nil, &MalformedResponseError{Err: err, Raw: truncateRaw(raw)}
		}
	}

	record, err := recordFromMap(decoded)
	if err != nil {
		return nil, &MalformedResponseError{Err: err, Raw: truncateRaw(raw)}
	}
	return record, nil
}

// cleanModelJSON removes markdown code fences and any stray text around the
// JSON object if the model ignored the formatting instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '{' to the last '}' when junk surrounds the
	// object.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

func recordFromMap(m map[string]interface{}) (*ExtractedRecord, error) {
	record := &ExtractedRecord{Raw: m}
	var err error

	if record.Date, err = getString(m, "date"); err != nil {
		return nil, err
	}
	if record.Payee, err = getString(m, "payee"); err != nil {
		return nil, err
	}
	if record.Payer, err = getString(m, "payer"); err != nil {
		return nil, err
	}
	if record.Currency, err = getString(m, "currency"); err != nil {
		return nil, err
	}
	if record.IsTrailerFee, err = getBool(m, "is_trailer_fee"); err != nil {
		return nil, err
	}
	if record.IsManagementFee, err = getBool(m, "is_management_fee"); err != nil {
		return nil, err
	}

	// Numeric-looking identifiers occasionally come back as JSON numbers;
	// coerce them to strings.
	if record.KeyIdentifier, err = getCoercedString(m, "key_identifier"); err != nil {
		return nil, err
	}
	if record.ChequeNumber, err = getOptionalCoercedString(m, "cheque_number"); err != nil {
		return nil, err
	}
	if record.AmountNumerical, err = getOptionalCoercedString(m, "amount_numerical"); err != nil {
		return nil, err
	}

	record.BankName, _ = m["bank_name"].(string)
	record.AmountWords, _ = m["amount_words"].(string)
	record.Remarks, _ = m["remarks"].(string)
	record.NextStep, _ = m["next_step"].(string)

	return record, nil
}

func getString(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", &IncompleteResponseError{Missing: []string{key}}
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(key, v, "string")
	}
	return s, nil
}

func getBool(m map[string]interface{}, key string) (bool, error) {
	v, ok := m[key]
	if !ok {
		return false, &IncompleteResponseError{Missing: []string{key}}
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeError(key, v, "boolean")
	}
	return b, nil
}

func getCoercedString(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", &IncompleteResponseError{Missing: []string{key}}
	}
	return coerceString(key, v)
}

func getOptionalCoercedString(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	return coerceString(key, v)
}

func coerceString(key string, v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", typeError(key, v, "string or number")
	}
}

func typeError(key string, got interface{}, want string) error {
	return fmt.Errorf("field %q has type %T, want %s", key, got, want)
}
