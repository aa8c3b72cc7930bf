package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	natserrors "github.com/c360/natsconf/errors"
	"github.com/c360/natsconf/types"
)

// fakeBroker records reconfigure calls and can be scripted to fail.
type fakeBroker struct {
	applied     []*types.Configuration
	reconfigErr error
	runtimeInfo *types.RuntimeInfo
	runtimeErr  error
}

func (f *fakeBroker) Reconfigure(_ context.Context, cfg *types.Configuration) error {
	if f.reconfigErr != nil {
		return f.reconfigErr
	}
	f.applied = append(f.applied, cfg)
	return nil
}

func (f *fakeBroker) RuntimeInfo(_ context.Context) (*types.RuntimeInfo, error) {
	if f.runtimeErr != nil {
		return nil, f.runtimeErr
	}
	return f.runtimeInfo, nil
}

func newTestController(t *testing.T) (*Controller, *fakeBroker) {
	t.Helper()
	broker := &fakeBroker{}
	ctrl, err := New(types.DefaultConfiguration(), broker, WithAppliedBy("test"))
	require.NoError(t, err)
	return ctrl, broker
}

func TestNew(t *testing.T) {
	t.Run("persists the initial version", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		v := ctrl.CurrentVersion()
		require.NotNil(t, v)
		assert.Equal(t, 1, v.Number)
		assert.Equal(t, types.ChangeInitial, v.Change)
		assert.Equal(t, "test", v.AppliedBy)
		assert.Equal(t, 1, ctrl.Store().Count())
	})

	t.Run("rejects nil initial configuration", func(t *testing.T) {
		_, err := New(nil, &fakeBroker{})
		require.Error(t, err)
		assert.ErrorIs(t, err, natserrors.ErrNilConfig)
	})

	t.Run("rejects nil broker", func(t *testing.T) {
		_, err := New(types.DefaultConfiguration(), nil)
		require.Error(t, err)
	})
}

func TestApplyChanges(t *testing.T) {
	ctx := context.Background()

	t.Run("valid change commits", func(t *testing.T) {
		ctrl, broker := newTestController(t)

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 5222
		})

		require.True(t, result.Success, result.Message)
		require.NotNil(t, result.Version)
		assert.Equal(t, 2, result.Version.Number)
		assert.Equal(t, types.ChangeUpdate, result.Version.Change)
		assert.Equal(t, 5222, ctrl.Current().Port)
		require.Len(t, broker.applied, 1)
		assert.Equal(t, 5222, broker.applied[0].Port)

		require.NotNil(t, result.Diff)
		require.Equal(t, 1, result.Diff.Len())
		assert.Equal(t, "Port", result.Diff.Changes[0].Path)
	})

	t.Run("invalid change leaves state untouched", func(t *testing.T) {
		ctrl, broker := newTestController(t)

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 70000
		})

		assert.False(t, result.Success)
		require.NotNil(t, result.Validation)
		assert.False(t, result.Validation.IsValid())
		assert.Nil(t, result.Version)
		assert.Equal(t, 4222, ctrl.Current().Port)
		assert.Empty(t, broker.applied)
		assert.Equal(t, 1, ctrl.Store().Count(), "no history entry on rejection")
	})

	t.Run("nil mutator fails without side effects", func(t *testing.T) {
		ctrl, broker := newTestController(t)

		result := ctrl.ApplyChanges(ctx, nil)
		assert.False(t, result.Success)
		assert.Empty(t, broker.applied)
		assert.Equal(t, 1, ctrl.Store().Count())
	})

	t.Run("broker failure leaves state untouched", func(t *testing.T) {
		ctrl, broker := newTestController(t)
		broker.reconfigErr = natserrors.ErrBrokerRejected

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 5222
		})

		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "broker reconfigure failed")
		assert.Equal(t, 4222, ctrl.Current().Port)
		assert.Equal(t, 1, ctrl.CurrentVersion().Number)
		assert.Equal(t, 1, ctrl.Store().Count())
	})

	t.Run("cancelled context aborts before any work", func(t *testing.T) {
		ctrl, broker := newTestController(t)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		result := ctrl.ApplyChanges(cancelled, func(cfg *types.Configuration) {
			cfg.Port = 5222
		})

		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "cancelled")
		assert.Empty(t, broker.applied)
		assert.Equal(t, 4222, ctrl.Current().Port)
	})

	t.Run("mutator works on a clone", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		var seen *types.Configuration
		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			seen = cfg
			cfg.Port = 5222
		})
		require.True(t, result.Success)

		// Mutating the captured clone afterwards must not leak into the
		// committed state.
		seen.Port = 9999
		assert.Equal(t, 5222, ctrl.Current().Port)
	})
}

func TestPreChangeSubscribers(t *testing.T) {
	ctx := context.Background()

	t.Run("rejection cancels the apply", func(t *testing.T) {
		ctrl, broker := newTestController(t)

		ctrl.OnChangeProposed(func(p ChangeProposal) error {
			return CancelChange("change window closed")
		})

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 5222
		})

		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "change window closed")
		assert.Empty(t, broker.applied)
		assert.Equal(t, 4222, ctrl.Current().Port)
		assert.Equal(t, 1, ctrl.Store().Count())
	})

	t.Run("first rejection short-circuits later subscribers", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		var secondCalled bool
		ctrl.OnChangeProposed(func(ChangeProposal) error {
			return CancelChange("no")
		})
		ctrl.OnChangeProposed(func(ChangeProposal) error {
			secondCalled = true
			return nil
		})

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 5222
		})
		assert.False(t, result.Success)
		assert.False(t, secondCalled)
	})

	t.Run("subscribers see both snapshots and the diff", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		var got ChangeProposal
		ctrl.OnChangeProposed(func(p ChangeProposal) error {
			got = p
			return nil
		})

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 5222
		})
		require.True(t, result.Success)

		require.NotNil(t, got.Current)
		require.NotNil(t, got.Proposed)
		assert.Equal(t, 4222, got.Current.Port)
		assert.Equal(t, 5222, got.Proposed.Port)
		require.NotNil(t, got.Diff)
		assert.Equal(t, 1, got.Diff.Len())
	})
}

func TestPostChangeObservers(t *testing.T) {
	ctx := context.Background()

	t.Run("observers run after commit", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		var got AppliedChange
		ctrl.OnChangeApplied(func(change AppliedChange) {
			got = change
		})

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 5222
		})
		require.True(t, result.Success)

		require.NotNil(t, got.OldVersion)
		require.NotNil(t, got.NewVersion)
		assert.Equal(t, 1, got.OldVersion.Number)
		assert.Equal(t, 2, got.NewVersion.Number)
	})

	t.Run("panicking observer does not unwind the commit", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		var secondCalled bool
		ctrl.OnChangeApplied(func(AppliedChange) {
			panic("observer bug")
		})
		ctrl.OnChangeApplied(func(AppliedChange) {
			secondCalled = true
		})

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 5222
		})

		assert.True(t, result.Success)
		assert.True(t, secondCalled)
		assert.Equal(t, 5222, ctrl.Current().Port)
	})

	t.Run("not run on failure", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		var called bool
		ctrl.OnChangeApplied(func(AppliedChange) { called = true })

		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = 70000
		})
		assert.False(t, result.Success)
		assert.False(t, called)
	})
}

func TestRollback(t *testing.T) {
	ctx := context.Background()

	applyPort := func(t *testing.T, ctrl *Controller, port int) {
		t.Helper()
		result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
			cfg.Port = port
		})
		require.True(t, result.Success, result.Message)
	}

	t.Run("implicit rollback returns to the previous version", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		applyPort(t, ctrl, 5222)
		applyPort(t, ctrl, 6222)

		result := ctrl.Rollback(ctx)
		require.True(t, result.Success, result.Message)

		assert.Equal(t, 5222, ctrl.Current().Port)
		assert.Equal(t, types.ChangeRollback, result.Version.Change)
		// A rollback is a new version, not a rewind.
		assert.Equal(t, 4, result.Version.Number)
		assert.Equal(t, 4, ctrl.Store().Count())
	})

	t.Run("explicit rollback targets a numbered version", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		applyPort(t, ctrl, 5222)
		applyPort(t, ctrl, 6222)

		result := ctrl.RollbackTo(ctx, 1)
		require.True(t, result.Success, result.Message)
		assert.Equal(t, 4222, ctrl.Current().Port)
	})

	t.Run("missing target fails cleanly", func(t *testing.T) {
		ctrl, broker := newTestController(t)

		result := ctrl.RollbackTo(ctx, 42)
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "rollback target not found")
		assert.Empty(t, broker.applied)
	})

	t.Run("nothing before the initial version", func(t *testing.T) {
		ctrl, _ := newTestController(t)

		result := ctrl.Rollback(ctx)
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "rollback target not found")
	})

	t.Run("rolled-back snapshot is a fresh clone", func(t *testing.T) {
		ctrl, _ := newTestController(t)
		applyPort(t, ctrl, 5222)

		result := ctrl.RollbackTo(ctx, 1)
		require.True(t, result.Success)

		original, err := ctrl.Store().GetVersion(1)
		require.NoError(t, err)
		assert.NotSame(t, original.Config, ctrl.CurrentVersion().Config)
	})
}

func TestGetInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("merges runtime and configuration", func(t *testing.T) {
		ctrl, broker := newTestController(t)
		broker.runtimeInfo = &types.RuntimeInfo{
			ClientURL:     "nats://localhost:4222",
			ServerID:      "S1",
			Connections:   7,
			ServerVersion: "2.10.0",
			StartedAt:     time.Now().UTC(),
		}

		info, err := ctrl.GetInfo(ctx)
		require.NoError(t, err)
		assert.Equal(t, "S1", info.Runtime.ServerID)
		assert.Equal(t, 7, info.Runtime.Connections)
		assert.Equal(t, 4222, info.Config.Port)
		assert.Equal(t, 1, info.Version)
	})

	t.Run("broker failure surfaces as transient", func(t *testing.T) {
		ctrl, broker := newTestController(t)
		broker.runtimeErr = natserrors.ErrInfoUnavailable

		info, err := ctrl.GetInfo(ctx)
		require.Error(t, err)
		assert.Nil(t, info)
		assert.True(t, natserrors.IsTransient(err))
	})
}
