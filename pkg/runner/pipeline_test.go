package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.praspel/pkg/registry"
)

func TestPipeline_Execute(t *testing.T) {
	f := newFixture(t)
	add, err := f.reg.Get("add")
	require.NoError(t, err)

	p := NewPipeline(NewRunner(WithTrials(3)))
	var order []string
	p.AddPreHook(func(_ context.Context, s *registry.Subject, res *Result) error {
		order = append(order, "pre:"+string(s.ID)+":"+res.Status)
		return nil
	})
	p.AddPostHook(func(_ context.Context, s *registry.Subject, res *Result) error {
		order = append(order, "post:"+string(s.ID)+":"+res.Status)
		return errors.New("logged only")
	})

	result, err := p.Execute(context.Background(), "run-9", add)
	require.NoError(t, err)
	assert.Equal(t, "run-9", result.RunID)
	assert.Equal(t, StatusPassed, result.Status)
	assert.Equal(t, []string{"pre:add:running", "post:add:passed"}, order)
}

func TestPipeline_Execute_PreHookFails(t *testing.T) {
	f := newFixture(t)
	add, err := f.reg.Get("add")
	require.NoError(t, err)

	p := NewPipeline(NewRunner())
	p.AddPreHook(func(context.Context, *registry.Subject, *Result) error {
		return errors.New("quota exceeded")
	})

	result, err := p.Execute(context.Background(), "run-1", add)
	require.NoError(t, err)
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "pipeline pre-hook failed: quota exceeded", result.Error)
	assert.Zero(t, f.addCalls.Load())
}

func TestPipeline_ExecuteSequence(t *testing.T) {
	f := newFixture(t)
	subjects := f.reg.List()

	p := NewPipeline(NewRunner(WithTrials(4), WithRunID("batch")))
	results, err := p.ExecuteSequence(context.Background(), subjects)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, StatusPassed, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
	for _, res := range results {
		assert.Equal(t, "batch", res.RunID)
	}
}
