package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wmcfinance/echeque-processor/internal/mapping"
)

// Payer identities that select a filename template. Matched verbatim against
// the extracted payer field.
const (
	// TrustAccountPayer disbursements must keep the legal payee name in the
	// filename for audit traceability.
	TrustAccountPayer = "WMC NOMINEE LIMITED-CLIENT TRUST ACCOUNT"

	// WMCPayer is the operating account.
	WMCPayer = "WEALTH MANAGEMENT CUBE LIMITED"
)

// Payees whose management-fee cheques get the " MF" filename suffix, keyed by
// normalized alias.
var managementFeePayees = map[string]bool{
	"OFS": true,
	"OREANA FINANCIAL SERVICES LIMITED": true,
}

var invalidFilenameChars = regexp.MustCompile(`[/*?:"<>|]`)

// SanitizeFilename replaces characters that are invalid in filenames with
// underscores.
func SanitizeFilename(name string) string {
	return strings.TrimSpace(invalidFilenameChars.ReplaceAllString(name, "_"))
}

// FilenameAlias resolves how the payee is spelled inside the generated
// filename. Trust-account disbursements keep the original payee name
// verbatim; everything else uses the routing target as a short alias when the
// payee is categorized, falling back to the original payee name.
func FilenameAlias(table *mapping.Table, payee, payer string) string {
	if mapping.Normalize(payer) == mapping.Normalize(TrustAccountPayer) {
		return payee
	}
	target, _ := table.Resolve(payee)
	if target != mapping.Uncategorized {
		return target
	}
	return payee
}

// GenerateFilename builds the canonical output filename. payeeAlias must
// already be alias-resolved via FilenameAlias. Pure function: same inputs
// always yield the same name. Collision handling belongs to the persistence
// side.
func GenerateFilename(keyIdentifier, payer, payeeAlias, currency string, isTrailerFee, isManagementFee bool) string {
	sanitized := SanitizeFilename(payeeAlias)

	// Trailer-fee suffix takes precedence when both flags are set.
	suffix := ""
	if isTrailerFee {
		suffix = "_T"
	} else if isManagementFee && managementFeePayees[mapping.Normalize(payeeAlias)] {
		suffix = " MF"
	}

	switch payer {
	case WMCPayer:
		return fmt.Sprintf("%s WMC-%s%s.pdf", keyIdentifier, sanitized, suffix)
	case TrustAccountPayer:
		return fmt.Sprintf("%s %s %s%s.pdf", currency, keyIdentifier, sanitized, suffix)
	default:
		return fmt.Sprintf("%s_%s_%s%s.pdf", sanitized, keyIdentifier, currency, suffix)
	}
}
