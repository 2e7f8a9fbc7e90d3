package pipeline_test

import (
	"context"
	"errors"
	"referralflow/internal/pipeline"
	mockpipeline "referralflow/internal/pipeline/mock"
	"referralflow/pkg/domain"
	mockstorage "referralflow/pkg/storage/mock"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestLocalQueue_RunIsDetachedFromRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mockpipeline.NewMockRunner(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	var runErr error
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p domain.ResumePayload) pipeline.Report {
			close(started)
			<-release
			runErr = ctx.Err()

			return pipeline.Report{RunID: p.RunID}
		})

	q := pipeline.NewLocalQueue(runner)
	reqCtx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Enqueue(reqCtx, payload("python")))
	cancel()

	<-started
	close(release)
	require.NoError(t, q.Shutdown(context.Background()))
	require.NoError(t, runErr)
}

func TestLocalQueue_ShutdownTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mockpipeline.NewMockRunner(ctrl)

	release := make(chan struct{})
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.ResumePayload) pipeline.Report {
			<-release

			return pipeline.Report{}
		})

	q := pipeline.NewLocalQueue(runner)
	require.NoError(t, q.Enqueue(context.Background(), payload("python")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.Shutdown(ctx), context.DeadlineExceeded)

	require.ErrorIs(t, q.Enqueue(context.Background(), payload("python")), pipeline.ErrQueueClosed)

	close(release)
	require.NoError(t, q.Shutdown(context.Background()))
}

func TestLocalQueue_PanicDoesNotEscape(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mockpipeline.NewMockRunner(ctrl)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.ResumePayload) pipeline.Report {
			panic("boom")
		})

	q := pipeline.NewLocalQueue(runner)
	require.NoError(t, q.Enqueue(context.Background(), payload("python")))
	require.NoError(t, q.Shutdown(context.Background()))
}

func TestRiverQueue_Enqueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	jobs := mockstorage.NewMockAllStorage(ctrl)
	p := payload("python")

	jobs.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
			ja, ok := args.(pipeline.JobArgs)
			require.True(t, ok)
			require.Equal(t, "ResumePipelineJob", ja.Kind())
			require.Equal(t, p, ja.Payload)
			require.Equal(t, 1, ja.InsertOpts().MaxAttempts)

			return true, nil
		})

	require.NoError(t, pipeline.NewRiverQueue(jobs).Enqueue(context.Background(), p))
}

func TestRiverQueue_EnqueueError(t *testing.T) {
	ctrl := gomock.NewController(t)
	jobs := mockstorage.NewMockAllStorage(ctrl)

	jobs.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))

	err := pipeline.NewRiverQueue(jobs).Enqueue(context.Background(), payload("python"))
	require.ErrorContains(t, err, "db down")
}
