// internal/workers/assessment/evaluate-wellness/handler.go
package evaluatewellness

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"wellness-engine/internal/assessment"
	"wellness-engine/internal/common/camunda"
	"wellness-engine/internal/common/config"
	"wellness-engine/internal/common/errors"
	"wellness-engine/internal/common/logger"
	"wellness-engine/internal/common/metrics"
	"wellness-engine/pkg/registry"
)

const TaskType = "evaluate-wellness-assessment"

type Handler struct {
	config     *Config
	runner     *assessment.Runner
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	retry      *camunda.RetryConfig
}

type HandlerOptions struct {
	AppConfig *config.Config
	Runner    *assessment.Runner
	Retry     *camunda.RetryConfig
	Logger    logger.Logger
	// Activity is the registry entry for TaskType; optional.
	Activity  *registry.Activity
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Activity != nil && opts.Activity.TaskType != TaskType {
		return nil, fmt.Errorf("%s: registry entry is for %q", TaskType, opts.Activity.TaskType)
	}
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.Activity)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("%s: runner is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:     cfg,
		runner:     opts.Runner,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
		retry:      opts.Retry,
	}, nil
}

func (h *Handler) Config() *Config { return h.config }

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := ParseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	if err := h.complete(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// ParseInput reads the assessmentRequest object from the job variables.
func ParseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("job variables are not a JSON object: %v", err))
	}

	raw, found := variables[InputVariable]
	if !found || raw == nil {
		return nil, errors.NewMissingFieldError(InputVariable)
	}
	record, isObject := raw.(map[string]interface{})
	if !isObject {
		stdErr := errors.NewInvalidRequestError(fmt.Sprintf("%s must be an object, got %T", InputVariable, raw))
		stdErr.Field = InputVariable
		return nil, stdErr
	}
	return &Input{AssessmentRequest: record}, nil
}

// Execute scores the request carried by one job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.runner.Run(ctx, input.AssessmentRequest)
	if err != nil {
		return nil, err
	}

	h.logger.Info("assessment completed", map[string]interface{}{
		"assessmentId": result.AssessmentID,
	})
	return &Output{Assessment: result}, nil
}

func (h *Handler) complete(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("build complete command: %w", err)
	}

	_, err = camunda.ExecuteWithRetry(ctx, h.retry, func(ctx context.Context) (interface{}, error) {
		return cmd.Send(ctx)
	}, "complete-job")
	return err
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := string(errors.AsStandardError(err).Code)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}
