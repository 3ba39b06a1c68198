package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetFraction_ClampsAndStaysMonotonic(t *testing.T) {
	m := NewMonitor()

	m.SetFraction(-0.5)
	assert.Equal(t, 0.0, m.Fraction())

	m.SetFraction(0.4)
	assert.Equal(t, 0.4, m.Fraction())

	m.SetFraction(0.2)
	assert.Equal(t, 0.4, m.Fraction(), "decreases are dropped")

	m.SetFraction(5)
	assert.Equal(t, 1.0, m.Fraction())
}

func TestChild_MapsOntoParentSlice(t *testing.T) {
	m := NewMonitor()
	m.SetFraction(0.2)

	child := m.Child(0.5)
	assert.Equal(t, 0.0, child.Fraction())

	child.SetFraction(0.5)
	assert.InDelta(t, 0.45, m.Fraction(), 1e-9)

	child.SetFraction(1)
	assert.InDelta(t, 0.7, m.Fraction(), 1e-9)
}

func TestChild_NegativeSpanTreatedAsEmpty(t *testing.T) {
	m := NewMonitor()
	child := m.Child(-1)
	child.SetFraction(1)
	assert.Equal(t, 0.0, m.Fraction())
}

func TestChild_NestedScopes(t *testing.T) {
	m := NewMonitor()
	outer := m.Child(0.5)
	inner := outer.Child(0.5)

	inner.SetFraction(1)
	assert.InDelta(t, 0.5, outer.Fraction(), 1e-9)
	assert.InDelta(t, 0.25, m.Fraction(), 1e-9)
}

func TestSetFraction_ConcurrentUpdates(t *testing.T) {
	m := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.SetFraction(float64(i) / 50)
		}()
	}
	wg.Wait()

	assert.InDelta(t, 0.98, m.Fraction(), 1e-9, "highest update wins")
}

func TestDialogShown(t *testing.T) {
	m := NewMonitor()
	assert.False(t, m.DialogShown())
	m.SetDialogShown(true)
	assert.True(t, m.DialogShown())
}
