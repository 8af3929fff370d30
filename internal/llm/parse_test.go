package llm

import "testing"

func TestParseLoanOptionsExtractsRows(t *testing.T) {
	markdown := `Some intro text.

| Loan Option | Loan Amount | Interest Rate | Tenure (years) | Monthly EMI | Eligibility |
|---|---|---|---|---|---|
| Option A | ₹60,00,000 | 8.5% | 20 | ₹52,069 | Eligible |
| Option B | ₹55,00,000 | 8.2% | 15 | ₹53,124 | Eligible |
| Special Option | ₹30,00,000 | 12.0% | 10 | ₹43,041 | Conditional |

Closing remarks.`

	options := ParseLoanOptions(markdown)
	if len(options) != 3 {
		t.Fatalf("expected 3 options, got %d: %+v", len(options), options)
	}
	if options[0].Option != "Option A" {
		t.Fatalf("option mismatch: got %q", options[0].Option)
	}
	if options[0].LoanAmount != "₹60,00,000" {
		t.Fatalf("loan amount mismatch: got %q", options[0].LoanAmount)
	}
	if options[2].Eligibility != "Conditional" {
		t.Fatalf("eligibility mismatch: got %q", options[2].Eligibility)
	}
}

func TestParseLoanOptionsSkipsHeaderAndSeparators(t *testing.T) {
	markdown := `| Loan Option | Loan Amount | Interest Rate | Tenure (years) | Monthly EMI | Eligibility |
| --- | --- | --- | --- | --- | --- |
| Option A | ₹10,00,000 | 9.0% | 5 | ₹20,760 | Eligible |`

	options := ParseLoanOptions(markdown)
	if len(options) != 1 {
		t.Fatalf("expected 1 option, got %d: %+v", len(options), options)
	}
}

func TestParseLoanOptionsIgnoresShortRows(t *testing.T) {
	markdown := `| only | three | cells |
| Option A | ₹10,00,000 | 9.0% | 5 | ₹20,760 | Eligible |`

	options := ParseLoanOptions(markdown)
	if len(options) != 1 {
		t.Fatalf("expected 1 option, got %d", len(options))
	}
}

func TestParseLoanOptionsNoTable(t *testing.T) {
	if options := ParseLoanOptions("no table here, just prose"); len(options) != 0 {
		t.Fatalf("expected zero options, got %d", len(options))
	}
	if options := ParseLoanOptions(""); len(options) != 0 {
		t.Fatalf("expected zero options for empty input, got %d", len(options))
	}
}
