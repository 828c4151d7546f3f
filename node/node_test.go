package node

import (
	"sync"
	"testing"
)

type dropCounter struct {
	drops int
}

func (d *dropCounter) Drop() {
	d.drops++
}

func TestNew(t *testing.T) {
	n := New("payload")
	if got := n.Refs(); got != 1 {
		t.Errorf("Refs() = %d, want 1", got)
	}
	if got := n.Value(); got != "payload" {
		t.Errorf("Value() = %v, want payload", got)
	}
}

func TestRetainRelease(t *testing.T) {
	d := &dropCounter{}
	n := New(d)

	n.Retain()
	if got := n.Refs(); got != 2 {
		t.Errorf("Refs() after Retain = %d, want 2", got)
	}

	n.Release()
	if got := n.Refs(); got != 1 {
		t.Errorf("Refs() after Release = %d, want 1", got)
	}
	if d.drops != 0 {
		t.Errorf("Drop ran with %d holders left", n.Refs())
	}

	n.Release()
	if d.drops != 1 {
		t.Errorf("drops = %d, want 1", d.drops)
	}
	if got := n.Value(); got != nil {
		t.Errorf("Value() after final release = %v, want nil", got)
	}
}

func TestRelease_Underflow(t *testing.T) {
	n := New(42)
	n.Release()

	defer func() {
		if recover() == nil {
			t.Error("Release below zero did not panic")
		}
	}()
	n.Release()
}

func TestRetain_AfterRelease(t *testing.T) {
	n := New(42)
	n.Release()

	defer func() {
		if recover() == nil {
			t.Error("Retain of released handle did not panic")
		}
	}()
	n.Retain()
}

func TestConcurrentRetainRelease(t *testing.T) {
	const holders = 64

	d := &dropCounter{}
	n := New(d)

	var wg sync.WaitGroup
	wg.Add(holders)
	for i := 0; i < holders; i++ {
		go func() {
			defer wg.Done()
			n.Retain()
			n.Release()
		}()
	}
	wg.Wait()

	if got := n.Refs(); got != 1 {
		t.Errorf("Refs() = %d, want 1", got)
	}
	if d.drops != 0 {
		t.Errorf("drops = %d, want 0", d.drops)
	}

	n.Release()
	if d.drops != 1 {
		t.Errorf("drops after final release = %d, want 1", d.drops)
	}
}
