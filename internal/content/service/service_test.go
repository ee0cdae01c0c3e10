package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content/repository"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// flakyRepo wraps a MemoryRepo and can be told to fail.
type flakyRepo struct {
	*repository.MemoryRepo
	saveErr error
	loadErr error
	saves   int
}

func (f *flakyRepo) Name() string { return "flaky" }

func (f *flakyRepo) Load(ctx context.Context) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.MemoryRepo.Load(ctx)
}

func (f *flakyRepo) Save(ctx context.Context, data []byte) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryRepo.Save(ctx, data)
}

func doc(t *testing.T, raw string) content.Document {
	t.Helper()
	d, err := content.Decode([]byte(raw))
	require.NoError(t, err)
	return d
}

func TestReplaceThenRead_RoundTrip(t *testing.T) {
	svc := New(repository.NewMemoryRepo())
	ctx := context.Background()

	_, err := svc.Read(ctx)
	require.ErrorIs(t, err, content.ErrNotFound)

	in := doc(t, `{"siteName":"Test","pricing":{"base":120,"currency":"EUR"},"testimonials":[{"name":"A","text":"Lovely"}]}`)
	require.NoError(t, svc.Replace(ctx, in))

	out, err := svc.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestReplace_RejectsEmptyAndNil(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: repository.NewMemoryRepo()}
	svc := New(repo)
	ctx := context.Background()
	require.NoError(t, svc.Replace(ctx, doc(t, `{"siteName":"Before"}`)))
	before, err := svc.Read(ctx)
	require.NoError(t, err)

	for _, d := range []content.Document{nil, {}} {
		err := svc.Replace(ctx, d)
		require.ErrorIs(t, err, content.ErrInvalidInput)
	}
	require.Equal(t, 1, repo.saves, "invalid input must not reach storage")

	after, err := svc.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestReplace_WriteErrorLeavesPrevious(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: repository.NewMemoryRepo()}
	svc := New(repo)
	ctx := context.Background()
	require.NoError(t, svc.Replace(ctx, doc(t, `{"siteName":"Before"}`)))

	beforeErrors := testutil.ToFloat64(metrics.ContentWrites.WithLabelValues("flaky", "error"))
	repo.saveErr = errors.New("disk full")
	err := svc.Replace(ctx, doc(t, `{"siteName":"After"}`))
	require.ErrorIs(t, err, content.ErrWrite)
	require.Equal(t, beforeErrors+1, testutil.ToFloat64(metrics.ContentWrites.WithLabelValues("flaky", "error")))

	repo.saveErr = nil
	got, err := svc.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, json.RawMessage(`"Before"`), got["siteName"])
}

func TestRead_Errors(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: repository.NewMemoryRepo()}
	svc := New(repo)
	ctx := context.Background()

	repo.loadErr = errors.New("permission denied")
	_, err := svc.Read(ctx)
	require.ErrorIs(t, err, content.ErrRead)
	require.NotErrorIs(t, err, content.ErrNotFound)
	require.Error(t, svc.Ping(ctx))

	// corrupt stored value
	repo.loadErr = nil
	require.NoError(t, repo.MemoryRepo.Save(ctx, []byte(`[1,2,3]`)))
	_, err = svc.Read(ctx)
	require.ErrorIs(t, err, content.ErrRead)
}

func TestPing_NotFoundIsHealthy(t *testing.T) {
	svc := New(repository.NewMemoryRepo())
	require.NoError(t, svc.Ping(context.Background()))
	require.Equal(t, "memory", svc.Backend())
}
