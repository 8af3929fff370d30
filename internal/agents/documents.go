package agents

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"home-loan-orchestrator/internal/domain"
)

// TextExtractor turns a document locator into plain text. Production wires
// the object store here; tests supply canned text.
type TextExtractor interface {
	ExtractText(ctx context.Context, locator string) (string, error)
}

var (
	panPattern       = regexp.MustCompile(`[A-Z]{5}[0-9]{4}[A-Z]`)
	dobPattern       = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	validYearPattern = regexp.MustCompile(`(?i)valid\s+(?:upto|until)[^\n]*?(\d{4})`)
	payPeriodPattern = regexp.MustCompile(`(\d{2}[./]\d{2}[./]\d{4})\s+to\s+(\d{2}[./]\d{2}[./]\d{4})`)
	salaryPattern    = regexp.MustCompile(`(?i)(?:gross|total standard) salary\D*([\d,]+(?:\.\d+)?)`)
	companyPattern   = regexp.MustCompile(`(?i)company[:\s]+([A-Za-z0-9 .&]+)`)
)

// payslipMaxAge bounds how old the latest payslip may be before recency
// degrades to a warning.
const payslipMaxAge = 90 * 24 * time.Hour

// DocumentAgent extracts applicant fields from KYC documents and runs
// cross-document consistency checks.
type DocumentAgent struct {
	extractor TextExtractor
	now       func() time.Time
}

func NewDocumentAgent(extractor TextExtractor) *DocumentAgent {
	return &DocumentAgent{extractor: extractor, now: time.Now}
}

type extractedFields struct {
	name        string
	pan         string
	dateOfBirth string
	company     string
	grossSalary *float64
	isValid     *bool
	isRecent    *bool
}

func (a *DocumentAgent) Validate(ctx context.Context, documents []domain.DocumentRef, applicant domain.ApplicantData) (domain.ValidationReport, error) {
	if len(documents) == 0 {
		return domain.ValidationReport{}, fmt.Errorf("required documents not provided")
	}

	extracted := make(map[domain.DocKind]extractedFields, len(documents))
	report := domain.ValidationReport{OverallStatus: domain.CheckSuccess}

	for _, doc := range documents {
		text, err := a.extractor.ExtractText(ctx, doc.Locator)
		if err != nil {
			report.Documents = append(report.Documents, domain.DocumentResult{
				Kind:    doc.Kind,
				Status:  domain.CheckFailure,
				Message: fmt.Sprintf("failed to analyze document: %v", err),
			})
			report.OverallStatus = domain.CheckFailure
			continue
		}

		fields := a.extractFields(doc.Kind, text, applicant)
		extracted[doc.Kind] = fields
		report.Documents = append(report.Documents, domain.DocumentResult{
			Kind:    doc.Kind,
			Status:  domain.CheckSuccess,
			Message: "document validated successfully",
			Fields:  fields.asMap(),
		})
	}

	a.runConsistencyChecks(&report, extracted)
	report.Consolidated = consolidate(extracted)
	return report, nil
}

func (a *DocumentAgent) extractFields(kind domain.DocKind, text string, applicant domain.ApplicantData) extractedFields {
	var fields extractedFields

	name := strings.TrimSpace(applicant.FullName)
	if name != "" {
		namePattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if match := namePattern.FindString(text); match != "" {
			fields.name = strings.ToUpper(match)
		}
	}

	switch kind {
	case domain.DocKindPAN:
		fields.pan = panPattern.FindString(text)
		fields.dateOfBirth = dobPattern.FindString(text)
	case domain.DocKindAadhaar:
		fields.dateOfBirth = dobPattern.FindString(text)
	case domain.DocKindCompanyID:
		if m := companyPattern.FindStringSubmatch(text); m != nil {
			fields.company = strings.TrimSpace(m[1])
		} else if applicant.CompanyName != "" {
			companyRe := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(applicant.CompanyName) + `\b`)
			fields.company = strings.TrimSpace(companyRe.FindString(text))
		}
		valid := false
		if m := validYearPattern.FindStringSubmatch(text); m != nil {
			if year, err := strconv.Atoi(m[1]); err == nil && year > a.now().Year() {
				valid = true
			}
		}
		fields.isValid = &valid
	case domain.DocKindPayslip:
		fields.pan = panPattern.FindString(text)
		if m := salaryPattern.FindStringSubmatch(text); m != nil {
			if gross, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
				fields.grossSalary = &gross
			}
		}
		recent := false
		if m := payPeriodPattern.FindStringSubmatch(text); m != nil {
			if end, err := parsePeriodDate(m[2]); err == nil {
				recent = a.now().Sub(end) <= payslipMaxAge
			}
		}
		fields.isRecent = &recent
	}
	return fields
}

func (a *DocumentAgent) runConsistencyChecks(report *domain.ValidationReport, extracted map[domain.DocKind]extractedFields) {
	names := make(map[string]bool)
	pans := make(map[string]bool)
	for _, fields := range extracted {
		if fields.name != "" {
			names[fields.name] = true
		}
		if fields.pan != "" {
			pans[fields.pan] = true
		}
	}

	if len(names) > 1 {
		report.OverallStatus = domain.CheckFailure
		report.Checks = append(report.Checks, domain.DocumentCheck{
			Check:  "Name Consistency",
			Status: domain.CheckFailure,
			Reason: fmt.Sprintf("mismatched names found: %v", sortedSet(names)),
		})
	} else {
		report.Checks = append(report.Checks, domain.DocumentCheck{
			Check:  "Name Consistency",
			Status: domain.CheckSuccess,
			Value:  firstOf(names),
		})
	}

	if len(pans) > 1 {
		report.OverallStatus = domain.CheckFailure
		report.Checks = append(report.Checks, domain.DocumentCheck{
			Check:  "PAN Consistency",
			Status: domain.CheckFailure,
			Reason: fmt.Sprintf("mismatched PAN numbers found: %v", sortedSet(pans)),
		})
	} else {
		report.Checks = append(report.Checks, domain.DocumentCheck{
			Check:  "PAN Consistency",
			Status: domain.CheckSuccess,
			Value:  firstOf(pans),
		})
	}

	if companyID, ok := extracted[domain.DocKindCompanyID]; ok {
		if companyID.isValid != nil && *companyID.isValid {
			report.Checks = append(report.Checks, domain.DocumentCheck{
				Check:  "Company ID Validity",
				Status: domain.CheckSuccess,
			})
		} else {
			report.OverallStatus = domain.CheckFailure
			report.Checks = append(report.Checks, domain.DocumentCheck{
				Check:  "Company ID Validity",
				Status: domain.CheckFailure,
				Reason: "Company ID card is expired or validity date could not be read.",
			})
		}
	}

	if payslip, ok := extracted[domain.DocKindPayslip]; ok {
		if payslip.isRecent != nil && *payslip.isRecent {
			report.Checks = append(report.Checks, domain.DocumentCheck{
				Check:  "Payslip Recency",
				Status: domain.CheckSuccess,
			})
		} else {
			report.Checks = append(report.Checks, domain.DocumentCheck{
				Check:  "Payslip Recency",
				Status: domain.CheckWarning,
				Reason: "Payslip is not recent or date could not be parsed.",
			})
		}
	}
}

func consolidate(extracted map[domain.DocKind]extractedFields) domain.ConsolidatedDetails {
	var out domain.ConsolidatedDetails

	names := make(map[string]bool)
	pans := make(map[string]bool)
	for _, fields := range extracted {
		if fields.name != "" {
			names[fields.name] = true
		}
		if fields.pan != "" {
			pans[fields.pan] = true
		}
	}
	if len(names) == 1 {
		name := firstOf(names)
		out.ApplicantName = &name
	}
	if len(pans) == 1 {
		pan := firstOf(pans)
		out.PANNumber = &pan
	}

	// DOB prefers the PAN card; Aadhaar is the fallback.
	if dob := extracted[domain.DocKindPAN].dateOfBirth; dob != "" {
		out.DateOfBirth = &dob
	} else if dob := extracted[domain.DocKindAadhaar].dateOfBirth; dob != "" {
		out.DateOfBirth = &dob
	}
	if company := extracted[domain.DocKindCompanyID].company; company != "" {
		out.CompanyName = &company
	}
	out.GrossMonthlySalary = extracted[domain.DocKindPayslip].grossSalary
	return out
}

func parsePeriodDate(raw string) (time.Time, error) {
	for _, layout := range []string{"02.01.2006", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func (f extractedFields) asMap() map[string]string {
	out := make(map[string]string)
	if f.name != "" {
		out["name"] = f.name
	}
	if f.pan != "" {
		out["pan_number"] = f.pan
	}
	if f.dateOfBirth != "" {
		out["date_of_birth"] = f.dateOfBirth
	}
	if f.company != "" {
		out["company"] = f.company
	}
	if f.grossSalary != nil {
		out["gross_monthly_salary"] = strconv.FormatFloat(*f.grossSalary, 'f', 2, 64)
	}
	if f.isValid != nil {
		out["is_valid"] = strconv.FormatBool(*f.isValid)
	}
	if f.isRecent != nil {
		out["is_recent"] = strconv.FormatBool(*f.isRecent)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func firstOf(set map[string]bool) string {
	for _, v := range sortedSet(set) {
		return v
	}
	return ""
}
