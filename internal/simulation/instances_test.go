package simulation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestInstances(clock *FakeClock) *Instances {
	return NewInstances(&Factory{
		Clock:      clock,
		DNADelay:   3 * time.Second,
		AudioDelay: 2 * time.Second,
		AckReset:   5 * time.Second,
		Random:     NewRandom(42),
		Tribes:     testTribes(6),
		Dialects:   testDialects(),
		Contact:    contactDoc,
	}, time.Hour)
}

func TestInstancesLifecycle(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := newTestInstances(clock)
	defer reg.Close()
	ctx := context.Background()

	dna, err := reg.Create(KindDNA)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dna.ID() == "" || dna.Kind() != KindDNA || !dna.CreatedAt().Equal(epoch) {
		t.Fatalf("unexpected instance %s %s %s", dna.ID(), dna.Kind(), dna.CreatedAt())
	}
	got, err := reg.Get(dna.ID())
	if err != nil || got != dna {
		t.Fatalf("Get: %v", err)
	}

	if err := dna.Trigger(ctx, Trigger{FileName: "raw.json"}); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	clock.Advance(3 * time.Second)
	raw, err := dna.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	view, ok := raw.(LabView)
	if !ok || !view.Unlocked || len(view.Matches) != MatchLimit {
		t.Fatalf("unexpected dna view %#v", raw)
	}
	if err := dna.Select(ctx, view.Matches[2].Tribe.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}

	if err := dna.Trigger(ctx, Trigger{FileName: "again.txt"}); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if clock.Pending() != 1 {
		t.Fatalf("expected the analysis timer pending, got %d", clock.Pending())
	}
	if err := reg.Delete(dna.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if clock.Pending() != 0 {
		t.Fatalf("Delete left %d timers", clock.Pending())
	}
	if _, err := reg.Get(dna.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := reg.Delete(dna.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInstancesKinds(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := newTestInstances(clock)
	defer reg.Close()
	ctx := context.Background()

	if _, err := reg.Create("karaoke"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}

	audio, err := reg.Create(KindPronunciation)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := audio.Trigger(ctx, Trigger{Dialect: "yoruba", Lesson: "l1", Word: 1}); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if err := audio.Select(ctx, "x"); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	clock.Advance(2 * time.Second)
	raw, _ := audio.View(ctx)
	if pv, ok := raw.(PronunciationView); !ok || len(pv.Completed) != 1 || pv.Completed[0] != "yoruba-l1-1" {
		t.Fatalf("unexpected pronunciation view %#v", raw)
	}

	form, err := reg.Create(KindContactForm)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	in := Trigger{Submission: Submission{Name: "Ada", Email: "ada@example.com", Message: "hello"}}
	if err := form.Trigger(ctx, in); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	raw, _ = form.View(ctx)
	if snap, ok := raw.(Snapshot[Receipt]); !ok || snap.State != StateComplete {
		t.Fatalf("unexpected contact view %#v", raw)
	}

	news, err := reg.Create(KindNewsletter)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := news.Trigger(ctx, Trigger{}); !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission, got %v", err)
	}

	if n := len(reg.List()); n != 3 {
		t.Fatalf("expected 3 instances, got %d", n)
	}
	reg.Close()
	if n := len(reg.List()); n != 0 {
		t.Fatalf("Close left %d instances", n)
	}
	if clock.Pending() != 0 {
		t.Fatalf("Close left %d timers", clock.Pending())
	}
}

func TestInstancesReapIdle(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := newTestInstances(clock)
	defer reg.Close()

	idle, err := reg.Create(KindDNA)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := idle.Trigger(context.Background(), Trigger{FileName: "raw.txt"}); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	busy, err := reg.Create(KindNewsletter)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	clock.Advance(40 * time.Minute)
	if _, err := reg.Get(busy.ID()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if active, ok := reg.LastActive(busy.ID()); !ok || !active.Equal(epoch.Add(40*time.Minute)) {
		t.Fatalf("Get must touch the instance, got %s", active)
	}
	if n := reg.Reap(); n != 0 {
		t.Fatalf("nothing is idle for an hour yet, reaped %d", n)
	}

	clock.Advance(30 * time.Minute)
	if n := reg.Reap(); n != 1 {
		t.Fatalf("expected one expired instance, got %d", n)
	}
	if _, err := reg.Get(idle.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected the idle instance gone, got %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected the active instance kept, got %d", reg.Len())
	}
}

func TestInstancesWithoutTTLNeverExpire(t *testing.T) {
	clock := NewFakeClock(epoch)
	reg := NewInstances(&Factory{Clock: clock, Random: NewRandom(1), Tribes: testTribes(6)}, 0)
	defer reg.Close()
	for i := 0; i < 3; i++ {
		if _, err := reg.Create(KindNewsletter); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	clock.Advance(24 * time.Hour)
	if n := reg.Reap(); n != 0 || reg.Len() != 3 {
		t.Fatalf("reaped %d of %d without a ttl", n, reg.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop with its context")
	}
}
