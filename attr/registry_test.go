package attr_test

import (
	"errors"
	"reflect"
	"runtime"
	"testing"

	"github.com/plus3/nodeattr/attr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAttachNameTaken(t *testing.T) {
	tests := []struct {
		name   string
		second func(*attr.Registry) error
	}{
		{"same type", func(r *attr.Registry) error {
			_, err := attr.Attach[Color](r, "x")
			return err
		}},
		{"different type", func(r *attr.Registry) error {
			_, err := attr.Attach[Point](r, "x")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry()
			_, err := attr.Attach[Color](reg, "x")
			require.NoError(t, err)

			err = tt.second(reg)
			assert.ErrorIs(t, err, attr.ErrNameTaken)
			assert.Equal(t, 1, reg.Len())
		})
	}
}

func TestGetNotFound(t *testing.T) {
	reg := newTestRegistry()

	_, err := attr.Get[Color](reg, "missing")
	assert.ErrorIs(t, err, attr.ErrNotFound)

	_, err = reg.Lookup("missing")
	assert.ErrorIs(t, err, attr.ErrNotFound)

	assert.ErrorIs(t, reg.Detach("missing"), attr.ErrNotFound)
}

func TestGetTypeMismatch(t *testing.T) {
	reg := newTestRegistry()
	_, err := attr.Attach[Point](reg, "coords")
	require.NoError(t, err)

	_, err = attr.Get[Color](reg, "coords")
	require.Error(t, err)
	assert.ErrorIs(t, err, attr.ErrTypeMismatch)

	var mismatch *attr.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "coords", mismatch.Name)
	assert.Equal(t, reflect.TypeOf(Point{}), mismatch.Declared)
	assert.Equal(t, reflect.TypeOf(Color(0)), mismatch.Requested)

	// Named types with the same underlying type are still distinct
	_, err = attr.Attach[int](reg, "plain")
	require.NoError(t, err)
	_, err = attr.Get[Color](reg, "plain")
	assert.ErrorIs(t, err, attr.ErrTypeMismatch)
}

func TestGetSharesStorage(t *testing.T) {
	reg := newTestRegistry()
	coords, err := attr.Attach[Point](reg, "coords")
	require.NoError(t, err)

	again, err := attr.Get[Point](reg, "coords")
	require.NoError(t, err)

	require.NoError(t, coords.Set(1, Point{X: 1}))
	p, ok, err := again.Get(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Point{X: 1}, p)

	require.NoError(t, again.Set(2, Point{Y: 2}))
	size, _ := coords.Size()
	assert.Equal(t, 2, size)

	store, _ := reg.Lookup("coords")
	assert.Equal(t, 2, store.LiveHandles())
	runtime.KeepAlive(coords)
	runtime.KeepAlive(again)
}

func TestDetachInvalidatesAllHandles(t *testing.T) {
	reg := newTestRegistry()
	coords, err := attr.Attach[Point](reg, "coords")
	require.NoError(t, err)
	again, err := attr.Get[Point](reg, "coords")
	require.NoError(t, err)

	require.NoError(t, coords.Set(0, Point{X: 1}))
	require.NoError(t, reg.Detach("coords"))

	for _, h := range []*attr.Handle[Point]{coords, again} {
		assert.False(t, h.Bound())
		assert.ErrorIs(t, h.Set(0, Point{}), attr.ErrAttributeInvalid)

		_, _, err := h.Get(0)
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.ReadAt(0)
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.WriteAt(0, Point{})
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.At(0).Read()
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.At(0).Write(Point{})
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.Assign(Point{}, 1, 2)
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.Size()
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.IsValid(0)
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.All()
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

		_, err = h.Values()
		assert.ErrorIs(t, err, attr.ErrAttributeInvalid)
	}

	assert.False(t, reg.Has("coords"))
}

func TestReattachIsIndependent(t *testing.T) {
	reg := newTestRegistry()
	coords, err := attr.Attach[Point](reg, "Coordinates")
	require.NoError(t, err)
	require.NoError(t, coords.Set(21, Point{X: 41, Y: 42}))

	require.NoError(t, reg.Detach("Coordinates"))

	numbers, err := attr.Attach[float64](reg, "Coordinates")
	require.NoError(t, err)

	size, err := numbers.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	_, err = coords.ReadAt(21)
	assert.ErrorIs(t, err, attr.ErrAttributeInvalid)

	// Writing through the new handle never revives the old one
	require.NoError(t, numbers.Set(21, 333.33))
	assert.False(t, coords.Bound())

	_, err = attr.Get[Point](reg, "Coordinates")
	assert.ErrorIs(t, err, attr.ErrTypeMismatch)
}

func TestEnumerate(t *testing.T) {
	reg := newTestRegistry()
	assert.Empty(t, reg.Enumerate())

	_, err := attr.Attach[Color](reg, "color")
	require.NoError(t, err)
	_, err = attr.Attach[Point](reg, "coords")
	require.NoError(t, err)
	_, err = attr.Attach[Label](reg, "label")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"color", "coords", "label"}, reg.Enumerate())

	require.NoError(t, reg.Detach("coords"))
	assert.ElementsMatch(t, []string{"color", "label"}, reg.Enumerate())
}

func TestRegistryInvalidateIndexBroadcast(t *testing.T) {
	reg := newTestRegistry()
	colors, err := attr.Attach[Color](reg, "color")
	require.NoError(t, err)
	coords, err := attr.Attach[Point](reg, "coords")
	require.NoError(t, err)

	require.NoError(t, colors.Set(7, 1))
	require.NoError(t, coords.Set(7, Point{X: 7}))
	require.NoError(t, coords.Set(8, Point{X: 8}))

	reg.InvalidateIndex(7)

	_, ok, _ := colors.Get(7)
	assert.False(t, ok)
	_, ok, _ = coords.Get(7)
	assert.False(t, ok)
	_, ok, _ = coords.Get(8)
	assert.True(t, ok)
}

func TestClose(t *testing.T) {
	reg := newTestRegistry()
	colors, err := attr.Attach[Color](reg, "color")
	require.NoError(t, err)
	coords, err := attr.Attach[Point](reg, "coords")
	require.NoError(t, err)

	reg.Close()

	assert.Equal(t, 0, reg.Len())
	assert.ErrorIs(t, colors.Set(0, 1), attr.ErrAttributeInvalid)
	assert.ErrorIs(t, coords.Set(0, Point{}), attr.ErrAttributeInvalid)

	// The registry can be reused
	_, err = attr.Attach[Color](reg, "color")
	assert.NoError(t, err)
	assert.False(t, colors.Bound())
}

func TestStoreAfterDetach(t *testing.T) {
	reg := newTestRegistry()
	colors, err := attr.Attach[Color](reg, "color")
	require.NoError(t, err)
	require.NoError(t, colors.Set(1, 1))

	store, err := reg.Lookup("color")
	require.NoError(t, err)
	require.NoError(t, reg.Detach("color"))

	// A retained store reference observes nothing and ignores invalidation
	assert.False(t, store.IsValid(1))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, store.LiveHandles())
	assert.Equal(t, 0, store.HighWater())
	store.InvalidateIndex(1)
	assert.Equal(t, 0, store.Len())
}

func TestStoreTypeIdentity(t *testing.T) {
	reg := newTestRegistry()
	_, err := attr.Attach[Point](reg, "coords")
	require.NoError(t, err)

	store, err := reg.Lookup("coords")
	require.NoError(t, err)
	assert.Equal(t, "coords", store.Name())
	assert.Equal(t, reflect.TypeFor[Point](), store.Type())
}

func TestStats(t *testing.T) {
	reg := newTestRegistry()
	colors, err := attr.Attach[Color](reg, "color")
	require.NoError(t, err)
	coords, err := attr.Attach[Point](reg, "coords")
	require.NoError(t, err)

	require.NoError(t, colors.Set(0, 1))
	require.NoError(t, colors.Set(9, 1))
	require.NoError(t, coords.Set(3, Point{}))

	stats := reg.Stats()
	assert.Equal(t, 2, stats.AttributeCount)
	assert.Equal(t, 3, stats.TotalValues)
	require.Len(t, stats.Attributes, 2)

	assert.Equal(t, "color", stats.Attributes[0].Name)
	assert.Equal(t, 2, stats.Attributes[0].Values)
	assert.Equal(t, 10, stats.Attributes[0].HighWater)
	assert.Equal(t, 1, stats.Attributes[0].LiveHandles)
	assert.Contains(t, stats.Attributes[0].Type, "Color")

	assert.Equal(t, "coords", stats.Attributes[1].Name)
	assert.Equal(t, 1, stats.Attributes[1].Values)
	runtime.KeepAlive(colors)
	runtime.KeepAlive(coords)
}

func TestInitialCapacity(t *testing.T) {
	reg := attr.NewRegistry(attr.WithInitialCapacity(1024))
	colors, err := attr.Attach[Color](reg, "color")
	require.NoError(t, err)

	store, _ := reg.Lookup("color")
	assert.Equal(t, 0, store.HighWater())

	require.NoError(t, colors.Set(1023, 1))
	assert.Equal(t, 1024, store.HighWater())
}

func TestLifecycleLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	reg := attr.NewRegistry(attr.WithLogger(logger))
	assert.Same(t, logger, reg.Logger())

	_, err := attr.Attach[Color](reg, "color")
	require.NoError(t, err)
	require.NoError(t, reg.Detach("color"))
	reg.Close()

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "attribute attached", entries[0].Message)
	assert.Equal(t, "color", entries[0].ContextMap()["name"])
	assert.Equal(t, "attribute detached", entries[1].Message)
	assert.Equal(t, "registry closed", entries[2].Message)
}

func TestNilLogger(t *testing.T) {
	reg := attr.NewRegistry(attr.WithLogger(nil))
	assert.NotNil(t, reg.Logger())
	_, err := attr.Attach[Color](reg, "color")
	assert.NoError(t, err)
}
