package pipeline

// Document is one PDF to process. Inputs are never mutated; the pipeline is a
// pure transform per document.
type Document struct {
	Filename string
	Content  []byte
}

// Normalized currency codes the extraction prompt instructs the model to use.
var ValidCurrencies = []string{"CNY", "USD", "HKD", "EUR", "GBP"}

// next_step values the model may return.
const (
	NextStepProcessPayment = "Process Payment"
	NextStepManualReview   = "Flag for Manual Review"
)

// ExtractedRecord is the structured result of model extraction for one
// cheque. JSON tags match the schema embedded in the prompt. Raw preserves
// the full decoded response, including fields this struct does not model.
type ExtractedRecord struct {
	BankName        string `json:"bank_name,omitempty"`
	Date            string `json:"date"`
	Payee           string `json:"payee"`
	Payer           string `json:"payer"`
	AmountNumerical string `json:"amount_numerical,omitempty"`
	AmountWords     string `json:"amount_words,omitempty"`
	ChequeNumber    string `json:"cheque_number,omitempty"`
	KeyIdentifier   string `json:"key_identifier"`
	Currency        string `json:"currency"`
	Remarks         string `json:"remarks,omitempty"`
	IsTrailerFee    bool   `json:"is_trailer_fee"`
	IsManagementFee bool   `json:"is_management_fee"`
	NextStep        string `json:"next_step,omitempty"`

	Raw map[string]interface{} `json:"-"`
}

// ProcessedResult is the final record for one successfully processed cheque.
// Immutable once created; ownership passes to the caller.
type ProcessedResult struct {
	Record            *ExtractedRecord
	RoutingTarget     string
	GLCode            string
	GeneratedFilename string
	PDFData           []byte
	OriginalFilename  string
}

// ProcessingError records a per-document failure. Failures never abort the
// batch; each is reported individually.
type ProcessingError struct {
	Filename string
	Err      error
}

func (e ProcessingError) Error() string {
	return e.Filename + ": " + e.Err.Error()
}

func (e ProcessingError) Unwrap() error { return e.Err }
