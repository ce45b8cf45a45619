package domain

// ViewSection identifies which of the three UI sections is visible.
type ViewSection string

const (
	SectionUpload     ViewSection = "upload"
	SectionProcessing ViewSection = "processing"
	SectionResults    ViewSection = "results"
)

// ViewState models the capture/submit/display lifecycle.
type ViewState string

const (
	ViewStateIdle       ViewState = "idle"
	ViewStateCapturing  ViewState = "capturing"
	ViewStateSubmitting ViewState = "submitting"
	ViewStateDisplaying ViewState = "displaying"
)

// ViewReason provides a structured reason for section transitions.
type ViewReason string

const (
	ReasonReady            ViewReason = "ready"
	ReasonCameraOpened     ViewReason = "camera_opened"
	ReasonCameraReopened   ViewReason = "camera_reopened"
	ReasonPhotoTaken       ViewReason = "photo_taken"
	ReasonPhotoDiscarded   ViewReason = "photo_discarded"
	ReasonCaptureCancelled ViewReason = "capture_cancelled"
	ReasonIdentifying      ViewReason = "identifying"
	ReasonResultReady      ViewReason = "result_ready"
	ReasonValidationFailed ViewReason = "validation_failed"
	ReasonSubmissionFailed ViewReason = "submission_failed"
	ReasonResultDismissed  ViewReason = "result_dismissed"
)

// ErrorCode identifies non-fatal backend errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup    ErrorCode = "startup"
	ErrorCodeCamera     ErrorCode = "camera"
	ErrorCodeSnapshot   ErrorCode = "snapshot"
	ErrorCodeValidation ErrorCode = "validation"
	ErrorCodeSubmission ErrorCode = "submission"
	ErrorCodeBusy       ErrorCode = "busy"
	ErrorCodeNavigation ErrorCode = "navigation"
)

// SourceKind records how an image payload was acquired.
type SourceKind string

const (
	SourceCamera SourceKind = "camera"
	SourceUpload SourceKind = "upload"
	SourceDrop   SourceKind = "drop"
)

// ImagePayload is an immutable image ready for validation and submission.
type ImagePayload struct {
	Bytes    []byte     `json:"-"`
	MimeType string     `json:"mimeType"`
	Source   SourceKind `json:"source"`
}

// Confidence is the identification service's self-reported certainty.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// ItemDescriptor describes an identified item.
type ItemDescriptor struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Confidence  Confidence `json:"confidence"`
	KeyFeatures []string   `json:"keyFeatures"`
	Notes       string     `json:"notes"`
}

// Outcome distinguishes the three identification results.
type Outcome string

const (
	OutcomeNotFound    Outcome = "not_found"
	OutcomeInInventory Outcome = "in_inventory"
	OutcomeNoInventory Outcome = "no_inventory"
)

// Identification is the typed outcome of submitting an image. Item and
// ProductURL are only meaningful for the outcomes that carry them.
// ImageData is the submitted photo as a data URL, echoed back by the
// service so the results view can show what was analyzed.
type Identification struct {
	Outcome    Outcome        `json:"outcome"`
	Item       ItemDescriptor `json:"item"`
	ProductURL string         `json:"productUrl,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	ImageData  string         `json:"imageData,omitempty"`
}

// ResultBranch selects how a result is rendered.
type ResultBranch string

const (
	BranchNotIdentified ResultBranch = "not_identified"
	BranchInInventory   ResultBranch = "in_inventory"
	BranchNoInventory   ResultBranch = "no_inventory"
)

// RenderPlan tells the UI how to display an identification result.
type RenderPlan struct {
	Branch       ResultBranch   `json:"branch"`
	Message      string         `json:"message"`
	Item         ItemDescriptor `json:"item"`
	Notes        string         `json:"notes,omitempty"`
	ImageData    string         `json:"imageData,omitempty"`
	ShowShopLink bool           `json:"showShopLink"`
	ShopURL      string         `json:"shopUrl,omitempty"`
	RedirectURL  string         `json:"redirectUrl,omitempty"`
}

// Status summarizes the current controller state for the UI.
type Status struct {
	State   ViewState   `json:"state"`
	Section ViewSection `json:"section"`
	Busy    bool        `json:"busy"`
	Message string      `json:"message,omitempty"`
}
