// internal/workers/assessment/evaluate-wellness/models.go
package evaluatewellness

import "wellness-engine/internal/models"

// Variable names on the job.
const (
	InputVariable  = "assessmentRequest"
	OutputVariable = "assessment"
)

type Input struct {
	AssessmentRequest map[string]interface{} `json:"assessmentRequest"`
}

type Output struct {
	Assessment *models.AssessmentResult `json:"assessment"`
}
