package cron

import (
	"context"
	"fmt"
	"testing"
)

type fakeLock struct {
	acquired   bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	return f.acquired, f.acquireErr
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func newCronService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   newTestLogger(),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func TestService_RunCycleExecutesAllJobs(t *testing.T) {
	lock := &fakeLock{acquired: true}
	first := &countingJob{name: "first"}
	failing := &countingJob{name: "failing", err: fmt.Errorf("boom")}
	last := &countingJob{name: "last"}
	service := newCronService(t, lock, first, failing, last)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if first.runs != 1 || failing.runs != 1 || last.runs != 1 {
		t.Fatalf("expected every job to run once: %d %d %d", first.runs, failing.runs, last.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock release, got %d", lock.releases)
	}
}

func TestService_RunCycleSkipsWithoutLock(t *testing.T) {
	lock := &fakeLock{acquired: false}
	job := &countingJob{name: "job"}
	service := newCronService(t, lock, job)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs, got %d", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("expected no release, got %d", lock.releases)
	}
}

func TestService_RunCycleLockErrorPropagates(t *testing.T) {
	lock := &fakeLock{acquireErr: fmt.Errorf("redis down")}
	service := newCronService(t, lock, &countingJob{name: "job"})

	if err := service.runCycle(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
