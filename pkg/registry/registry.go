// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity bound to a job type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Validate checks every entry and reports all problems at once.
func (r *ActivityRegistry) Validate() error {
	var problems []string
	ids := map[string]bool{}
	taskTypes := map[string]bool{}

	for i, a := range r.Activities {
		at := fmt.Sprintf("activities[%d]", i)
		if a.ID == "" {
			problems = append(problems, at+": id is required")
		} else if ids[a.ID] {
			problems = append(problems, fmt.Sprintf("%s: duplicate id %q", at, a.ID))
		}
		ids[a.ID] = true

		if a.TaskType == "" {
			problems = append(problems, at+": taskType is required")
		} else if taskTypes[a.TaskType] {
			problems = append(problems, fmt.Sprintf("%s: duplicate taskType %q", at, a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if !implementationStatuses[a.ImplementationStatus] {
			problems = append(problems, fmt.Sprintf("%s: unknown implementationStatus %q", at, a.ImplementationStatus))
		}
		if a.Timeout != "" {
			if d, err := time.ParseDuration(a.Timeout); err != nil || d <= 0 {
				problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", at, a.Timeout))
			}
		}
		if a.Retries < 0 {
			problems = append(problems, at+": retries must not be negative")
		}
		for name, s := range map[string]map[string]interface{}{"inputSchema": a.InputSchema, "outputSchema": a.OutputSchema} {
			if len(s) == 0 {
				continue
			}
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s)); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %s: %v", at, name, err))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("registry invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// TimeoutDuration parses Timeout, falling back when it is empty or invalid.
func (a *Activity) TimeoutDuration(fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ValidateInput checks job variables against the activity's input schema.
// An activity without a schema accepts anything.
func (a *Activity) ValidateInput(variables map[string]interface{}) error {
	return validateAgainst(a.InputSchema, variables, a.ID+" input")
}

// ValidateOutput checks completion variables against the output schema.
func (a *Activity) ValidateOutput(variables map[string]interface{}) error {
	return validateAgainst(a.OutputSchema, variables, a.ID+" output")
}

func validateAgainst(schema, doc map[string]interface{}, what string) error {
	if len(schema) == 0 {
		return nil
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate %s: %w", what, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s invalid: %s", what, strings.Join(msgs, "; "))
	}
	return nil
}
