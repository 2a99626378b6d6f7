package state

import (
	"reflect"
	"testing"
)

func TestSubscribeReplaysCurrentValue(t *testing.T) {
	s := New(42)

	var got []int
	unsub := s.Subscribe(func(v int) { got = append(got, v) })
	defer unsub()

	if !reflect.DeepEqual(got, []int{42}) {
		t.Fatalf("expected immediate replay of 42, got %v", got)
	}
}

func TestSetNotifiesInOrder(t *testing.T) {
	s := New(0)

	var got []int
	unsub := s.Subscribe(func(v int) { got = append(got, v) })
	defer unsub()

	s.Set(1)
	s.Set(2)
	s.Set(3)

	if !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Fatalf("unexpected delivery order: %v", got)
	}
	if s.Get() != 3 {
		t.Fatalf("Get = %d, want 3", s.Get())
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := New("a")

	calls := 0
	unsub := s.Subscribe(func(string) { calls++ })

	s.Set("b")
	unsub()
	unsub() // idempotent
	s.Set("c")

	if calls != 2 { // replay + "b"
		t.Fatalf("expected 2 deliveries, got %d", calls)
	}
}

func TestSubscriberMayReadStore(t *testing.T) {
	s := New(0)

	var seen int
	unsub := s.Subscribe(func(int) { seen = s.Get() })
	defer unsub()

	s.Set(7)
	if seen != 7 {
		t.Fatalf("subscriber read %d, want 7", seen)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	s := New(0)

	a, b := 0, 0
	unsubA := s.Subscribe(func(v int) { a = v })
	unsubB := s.Subscribe(func(v int) { b = v })
	defer unsubA()
	defer unsubB()

	s.Set(5)
	if a != 5 || b != 5 {
		t.Fatalf("subscribers saw a=%d b=%d, want 5/5", a, b)
	}
}
