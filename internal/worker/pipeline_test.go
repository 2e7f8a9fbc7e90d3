package worker_test

import (
	"context"
	"errors"
	"os"
	"referralflow/internal/pipeline"
	mockpipeline "referralflow/internal/pipeline/mock"
	"referralflow/internal/worker"
	"referralflow/pkg/domain"
	"referralflow/pkg/logger"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	os.Exit(m.Run())
}

func makeJob(id int64, p domain.ResumePayload) *river.Job[pipeline.JobArgs] {
	return &river.Job[pipeline.JobArgs]{
		JobRow: &rivertype.JobRow{ID: id, Attempt: 1},
		Args:   pipeline.JobArgs{Payload: p},
	}
}

func TestPipelineWorker_Work(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mockpipeline.NewMockRunner(ctrl)
	w := worker.NewPipelineWorker(runner, time.Minute)

	p := domain.ResumePayload{RunID: domain.NewRunID(), Text: "python", Email: "a@b.com"}
	runner.EXPECT().Run(gomock.Any(), p).Return(pipeline.Report{
		RunID:    p.RunID,
		Outcomes: []domain.DispatchOutcome{{Sent: true}, {Sent: false, Error: "relay down"}},
	})

	// a run with failed deliveries is still a completed job
	require.NoError(t, w.Work(context.Background(), makeJob(1, p)))
}

func TestPipelineWorker_Work_EmptyPayloadCancels(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mockpipeline.NewMockRunner(ctrl)
	w := worker.NewPipelineWorker(runner, time.Minute)

	err := w.Work(context.Background(), makeJob(2, domain.ResumePayload{Email: "a@b.com"}))
	require.Error(t, err)
	var cancelErr *river.JobCancelError
	require.True(t, errors.As(err, &cancelErr))
}

func TestPipelineWorker_Timeout(t *testing.T) {
	w := worker.NewPipelineWorker(nil, 10*time.Minute)
	require.Equal(t, 10*time.Minute, w.Timeout(nil))

	w = worker.NewPipelineWorker(nil, 0)
	require.Equal(t, time.Duration(-1), w.Timeout(nil))
}
