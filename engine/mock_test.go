package engine

import (
	"github.com/hupe1980/tpctrack/geometry"
	"github.com/hupe1980/tpctrack/merger"
	"github.com/hupe1980/tpctrack/slicetracker"
	"github.com/stretchr/testify/mock"
)

type mockSliceTracker struct {
	mock.Mock
	out slicetracker.Output
}

func (m *mockSliceTracker) Initialize(p geometry.Param) error { return m.Called(p.Slice).Error(0) }
func (m *mockSliceTracker) StartEvent()                       { m.Called() }
func (m *mockSliceTracker) Reconstruct() error                { return m.Called().Error(0) }
func (m *mockSliceTracker) OutputTrackCount() int             { return len(m.out.Tracks) }
func (m *mockSliceTracker) Output() *slicetracker.Output      { return &m.out }

func (m *mockSliceTracker) ReadEvent(first, counts []int, x, y, z []float32, n int) {
	m.Called(counts, n)
}

type mockMerger struct {
	mock.Mock
	out merger.Output
}

func (m *mockMerger) Clear()                                     { m.Called() }
func (m *mockMerger) SetSliceParam(p geometry.Param)             { m.Called(p.Slice) }
func (m *mockMerger) SetSliceData(s int, _ *slicetracker.Output) { m.Called(s) }
func (m *mockMerger) Reconstruct() error                         { return m.Called().Error(0) }
func (m *mockMerger) Output() *merger.Output                     { return &m.out }
