package llm

import (
	"strings"

	"home-loan-orchestrator/internal/domain"
)

// ParseLoanOptions pulls structured rows out of the advisor's markdown
// table. Rows need at least six cells; separator lines are skipped. Text
// without a table parses to zero options.
func ParseLoanOptions(markdown string) []domain.LoanOption {
	var options []domain.LoanOption
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") || strings.HasPrefix(line, "|---") {
			continue
		}
		cells := strings.Split(line, "|")
		if len(cells) < 2 {
			continue
		}
		cells = cells[1 : len(cells)-1]
		parts := make([]string, 0, len(cells))
		for _, cell := range cells {
			parts = append(parts, strings.TrimSpace(cell))
		}
		if len(parts) < 6 {
			continue
		}
		if isHeaderRow(parts) || isSeparatorRow(parts) {
			continue
		}
		options = append(options, domain.LoanOption{
			Option:       parts[0],
			LoanAmount:   parts[1],
			InterestRate: parts[2],
			Tenure:       parts[3],
			MonthlyEMI:   parts[4],
			Eligibility:  parts[5],
		})
	}
	return options
}

func isHeaderRow(parts []string) bool {
	return strings.EqualFold(parts[0], "Loan Option")
}

func isSeparatorRow(parts []string) bool {
	for _, p := range parts {
		if strings.Trim(p, "-: ") != "" {
			return false
		}
	}
	return true
}
