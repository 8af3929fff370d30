package domain

type WorkflowStatus string

const (
	WorkflowSuccess        WorkflowStatus = "success"
	WorkflowPartialSuccess WorkflowStatus = "partial_success"
	WorkflowFailed         WorkflowStatus = "failed"
	WorkflowError          WorkflowStatus = "error"
)

type ApplicationStatus string

const (
	ApplicationReceived         ApplicationStatus = "RECEIVED"
	ApplicationPendingDocuments ApplicationStatus = "PENDING_DOCUMENTS"
	ApplicationProcessing       ApplicationStatus = "PROCESSING"
	ApplicationCompleted        ApplicationStatus = "COMPLETED"
	ApplicationFailed           ApplicationStatus = "FAILED"
)

type AuditState string

const (
	AuditApplicationReceived AuditState = "APPLICATION_RECEIVED"
	AuditDocumentUploaded    AuditState = "DOCUMENT_UPLOADED"
	AuditWorkflowStarted     AuditState = "WORKFLOW_STARTED"
	AuditWorkflowCompleted   AuditState = "WORKFLOW_COMPLETED"
)

type DocKind string

const (
	DocKindPAN       DocKind = "pan"
	DocKindAadhaar   DocKind = "aadhaar"
	DocKindCompanyID DocKind = "company_id"
	DocKindPayslip   DocKind = "payslip"
)

type CheckStatus string

const (
	CheckSuccess CheckStatus = "Success"
	CheckFailure CheckStatus = "Failure"
	CheckWarning CheckStatus = "Warning"
)

type ValuationMethod string

const (
	ValuationModel     ValuationMethod = "model"
	ValuationRuleBased ValuationMethod = "rule_based"
)
